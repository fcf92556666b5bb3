// Package version normalizes user-supplied runtime version tags and orders release versions.
package version

import (
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

// Tag aliases accepted in place of a numeric version.
const (
	AliasLatest = "latest"
	AliasLTS    = "lts"
)

var (
	numericTagPattern = regexp.MustCompile(`^v?[0-9]+(\.[0-9]+){0,2}$`)
	majorOnlyPattern  = regexp.MustCompile(`^v[0-9]+$`)
)

// Normalize maps a raw tag to its canonical lowercase form.
// Numeric tags with one to three components gain a "v" prefix ("12" -> "v12",
// "V12.22.1" -> "v12.22.1"); anything else is returned lowercased as-is.
func Normalize(raw string) string {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if !numericTagPattern.MatchString(tag) {
		return tag
	}
	if !strings.HasPrefix(tag, "v") {
		tag = "v" + tag
	}
	return tag
}

// IsMajorOnly reports whether a normalized tag names only a major line (v<N>).
func IsMajorOnly(tag string) bool {
	return majorOnlyPattern.MatchString(tag)
}

// IsRelease reports whether v is a full vMAJOR.MINOR.PATCH release version.
func IsRelease(v string) bool {
	if !semver.IsValid(v) {
		return false
	}
	if semver.Prerelease(v) != "" || semver.Build(v) != "" {
		return false
	}
	return strings.Count(v, ".") == 2
}

// Matches reports whether release version v satisfies normalized tag.
// A major-only tag matches its whole line; a partial tag matches on
// component boundaries, so "v12.2" matches "v12.2.0" but not "v12.22.1".
func Matches(v string, tag string) bool {
	if tag == "" {
		return false
	}
	if IsMajorOnly(tag) {
		return strings.HasPrefix(v, tag+".")
	}
	return v == tag || strings.HasPrefix(v, tag+".")
}

// Compare orders two release versions numerically by major, minor, and patch.
// It returns -1 if a < b, 0 if a == b, and 1 if a > b.
func Compare(a string, b string) int {
	return semver.Compare(a, b)
}

// Greatest returns the numerically greatest version in versions.
func Greatest(versions []string) (string, bool) {
	best := ""
	for _, v := range versions {
		if best == "" || Compare(v, best) > 0 {
			best = v
		}
	}
	return best, best != ""
}
