// Package resolve turns a user version tag into a concrete, platform-available release.
package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/conn-castle/nodeswitch/internal/catalog"
	"github.com/conn-castle/nodeswitch/internal/logging"
	"github.com/conn-castle/nodeswitch/internal/messages"
	"github.com/conn-castle/nodeswitch/internal/platform"
	"github.com/conn-castle/nodeswitch/internal/version"
)

// Resolved names a release confirmed to have an artifact for Platform.
type Resolved struct {
	Version  string
	Platform string
}

// ResolutionError reports that no release satisfies the tag, or that the
// matching release has no build on any probed platform.
type ResolutionError struct {
	Tag       string
	Version   string
	Platforms []string
}

func (e *ResolutionError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf(messages.ResolveNoMatchFmt, e.Tag)
	}
	return fmt.Sprintf(messages.ResolveNoBuildFmt, e.Version, strings.Join(e.Platforms, " or "))
}

// PlatformUnavailableError reports that Version exists for Fallback but not Requested.
type PlatformUnavailableError struct {
	Version   string
	Requested string
	Fallback  string
}

func (e *PlatformUnavailableError) Error() string {
	return fmt.Sprintf(messages.ResolvePlatformUnavailableFmt, e.Version, e.Requested, e.Fallback, e.Fallback)
}

// Catalog supplies the current release list.
type Catalog interface {
	Load(ctx context.Context) ([]catalog.Entry, error)
}

// Checker reports whether a release artifact exists for a platform.
type Checker interface {
	Exists(ctx context.Context, version string, platform string) (bool, error)
}

// Resolver matches tags against the catalog and confirms platform availability.
type Resolver struct {
	Catalog Catalog
	Checker Checker
	Logger  *slog.Logger
}

// Resolve normalizes rawTag, selects the newest matching release, and
// confirms an artifact exists for platformTag. It never substitutes the
// fallback platform; a fallback-only build yields PlatformUnavailableError.
func (r *Resolver) Resolve(ctx context.Context, rawTag string, platformTag string) (Resolved, error) {
	logger := r.logger()
	tag := version.Normalize(rawTag)

	entries, err := r.Catalog.Load(ctx)
	if err != nil {
		return Resolved{}, err
	}
	selected, ok := SelectEntry(entries, tag)
	if !ok {
		return Resolved{}, &ResolutionError{Tag: rawTag}
	}
	logger.Debug("selected release", "tag", tag, "version", selected.Version)

	if r.available(ctx, selected.Version, platformTag) {
		return Resolved{Version: selected.Version, Platform: platformTag}, nil
	}

	probed := []string{platformTag}
	if fallback, ok := platform.Fallback(platformTag); ok {
		if r.available(ctx, selected.Version, fallback) {
			return Resolved{}, &PlatformUnavailableError{
				Version:   selected.Version,
				Requested: platformTag,
				Fallback:  fallback,
			}
		}
		probed = append(probed, fallback)
	}
	return Resolved{}, &ResolutionError{Tag: rawTag, Version: selected.Version, Platforms: probed}
}

// available probes once and treats transport failures as unavailable.
func (r *Resolver) available(ctx context.Context, v string, platformTag string) bool {
	ok, err := r.Checker.Exists(ctx, v, platformTag)
	if err != nil {
		r.logger().Warn(fmt.Sprintf(messages.ResolveProbeFailedFmt, v, platformTag, err))
		return false
	}
	r.logger().Debug("probed artifact", "version", v, "platform", platformTag, "available", ok)
	return ok
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return logging.Discard()
	}
	return r.Logger
}

// SelectEntry picks the newest catalog entry satisfying a normalized tag.
func SelectEntry(entries []catalog.Entry, tag string) (catalog.Entry, bool) {
	var best catalog.Entry
	found := false
	for _, entry := range entries {
		if !entryMatches(entry, tag) {
			continue
		}
		if !found || version.Compare(entry.Version, best.Version) > 0 {
			best = entry
			found = true
		}
	}
	return best, found
}

func entryMatches(entry catalog.Entry, tag string) bool {
	switch tag {
	case version.AliasLatest:
		return true
	case version.AliasLTS:
		return entry.IsLTS()
	}
	if entry.IsLTS() && strings.EqualFold(entry.LTS.Codename, tag) {
		return true
	}
	return version.Matches(entry.Version, tag)
}

// Select picks the newest version in versions satisfying a normalized tag.
// The lts alias and codenames need catalog data and never match here.
func Select(versions []string, tag string) (string, bool) {
	var candidates []string
	for _, v := range versions {
		if tag == version.AliasLatest || version.Matches(v, tag) {
			candidates = append(candidates, v)
		}
	}
	return version.Greatest(candidates)
}
