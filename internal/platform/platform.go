// Package platform identifies the host's release platform tag.
package platform

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/conn-castle/nodeswitch/internal/messages"
)

// Platform tags recognized by the release artifact naming convention.
const (
	X64   = "win-x64"
	X86   = "win-x86"
	ARM64 = "win-arm64"
)

// EnvPlatformOverride forces the detected platform tag.
const EnvPlatformOverride = "NSW_PLATFORM"

// Tags lists every recognized platform tag.
var Tags = []string{X64, X86, ARM64}

// fallbacks is the complete fallback table. Tags missing here have no fallback.
var fallbacks = map[string]string{
	X64: X86,
	X86: X64,
}

// processorArchitectures maps PROCESSOR_ARCHITECTURE values to tags.
var processorArchitectures = map[string]string{
	"AMD64": X64,
	"X86":   X86,
	"ARM64": ARM64,
}

// goArchitectures maps GOARCH values to tags.
var goArchitectures = map[string]string{
	"amd64": X64,
	"386":   X86,
	"arm64": ARM64,
}

// Current detects the platform of the running process.
func Current(getenv func(string) string) (string, error) {
	return Detect(getenv, runtime.GOARCH)
}

// Detect derives the platform tag from the environment and goarch.
// NSW_PLATFORM wins, then PROCESSOR_ARCHITEW6432 (a 32-bit process on a
// 64-bit host), then PROCESSOR_ARCHITECTURE, then goarch.
func Detect(getenv func(string) string, goarch string) (string, error) {
	if getenv != nil {
		if override := strings.TrimSpace(getenv(EnvPlatformOverride)); override != "" {
			return Parse(override)
		}
		for _, key := range []string{"PROCESSOR_ARCHITEW6432", "PROCESSOR_ARCHITECTURE"} {
			raw := strings.ToUpper(strings.TrimSpace(getenv(key)))
			if raw == "" {
				continue
			}
			if tag, ok := processorArchitectures[raw]; ok {
				return tag, nil
			}
			return "", fmt.Errorf(messages.PlatformUnsupportedArchFmt, raw, strings.Join(Tags, ", "))
		}
	}
	if tag, ok := goArchitectures[goarch]; ok {
		return tag, nil
	}
	return "", fmt.Errorf(messages.PlatformUnsupportedArchFmt, goarch, strings.Join(Tags, ", "))
}

// Parse validates a user-supplied tag. Bare architectures ("x64") are accepted.
func Parse(raw string) (string, error) {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if !strings.HasPrefix(tag, "win-") {
		tag = "win-" + tag
	}
	if !Valid(tag) {
		return "", fmt.Errorf(messages.PlatformInvalidTagFmt, raw, strings.Join(Tags, ", "))
	}
	return tag, nil
}

// Valid reports whether tag is a recognized platform tag.
func Valid(tag string) bool {
	for _, known := range Tags {
		if tag == known {
			return true
		}
	}
	return false
}

// Fallback returns the single alternate platform probed when tag has no build.
func Fallback(tag string) (string, bool) {
	fallback, ok := fallbacks[tag]
	return fallback, ok
}
