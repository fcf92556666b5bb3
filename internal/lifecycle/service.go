// Package lifecycle implements the install, activation, default, and removal
// operations on top of the store, resolver, and activation link.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/conn-castle/nodeswitch/internal/catalog"
	"github.com/conn-castle/nodeswitch/internal/config"
	"github.com/conn-castle/nodeswitch/internal/logging"
	"github.com/conn-castle/nodeswitch/internal/messages"
	"github.com/conn-castle/nodeswitch/internal/resolve"
	"github.com/conn-castle/nodeswitch/internal/store"
	"github.com/conn-castle/nodeswitch/internal/version"
)

// ErrDependencyMissing is returned when a required collaborator is not configured.
var ErrDependencyMissing = errors.New("required dependency is not configured")

// NotInstalledError reports that no installed version matches a tag.
// It unwraps to a *resolve.ResolutionError.
type NotInstalledError struct {
	Tag      string
	Platform string
}

func (e *NotInstalledError) Error() string {
	return fmt.Sprintf(messages.ResolveNotInstalledFmt, e.Tag, e.Platform, e.Tag)
}

func (e *NotInstalledError) Unwrap() error {
	return &resolve.ResolutionError{Tag: e.Tag}
}

// Resolver turns a tag into an available release.
type Resolver interface {
	Resolve(ctx context.Context, tag string, platformTag string) (resolve.Resolved, error)
}

// Installer places a resolved release in the store.
type Installer interface {
	Install(ctx context.Context, target resolve.Resolved) (store.Installed, error)
}

// Catalog lists remote releases.
type Catalog interface {
	Load(ctx context.Context) ([]catalog.Entry, error)
}

// Switcher owns the activation link.
type Switcher interface {
	Activate(inst store.Installed) error
	Clear() error
	Current() (store.Installed, bool, error)
	PointsInto(inst store.Installed) (bool, error)
}

// Locker serializes store mutations.
type Locker interface {
	With(fn func() error) error
}

// Service runs user operations against one store.
type Service struct {
	Layout    store.Layout
	Resolver  Resolver
	Installer Installer
	Catalog   Catalog
	Switcher  Switcher
	Config    config.Store
	Lock      Locker
	Logger    *slog.Logger
}

// ListItem is one installed version with its activation state.
type ListItem struct {
	store.Installed
	Active  bool
	Default bool
}

// RemoveResult describes what Remove changed.
type RemoveResult struct {
	Removed     store.Installed
	ClearedLink bool
}

// Install resolves tag for platformTag and installs it, replacing any
// existing tree for the same release. When the activation link pointed into
// the replaced tree it is re-pointed at the new one.
func (s *Service) Install(ctx context.Context, tag string, platformTag string) (store.Installed, error) {
	if s.Resolver == nil {
		return store.Installed{}, missing("resolver")
	}
	if s.Installer == nil {
		return store.Installed{}, missing("installer")
	}
	if err := requireTag(tag); err != nil {
		return store.Installed{}, err
	}
	resolved, err := s.Resolver.Resolve(ctx, tag, platformTag)
	if err != nil {
		return store.Installed{}, err
	}
	s.logger().Debug("resolved", "tag", tag, "version", resolved.Version, "platform", resolved.Platform)

	var installed store.Installed
	err = s.withLock(func() error {
		active, err := s.pointsInto(store.Installed{Root: s.Layout.VersionRoot(resolved.Version, resolved.Platform)})
		if err != nil {
			return err
		}
		var installErr error
		installed, installErr = s.Installer.Install(ctx, resolved)
		if installErr != nil {
			return installErr
		}
		// The swap replaced the tree under an active link; its extracted
		// directory may have a new name.
		if active {
			return s.Switcher.Activate(installed)
		}
		return nil
	})
	if err != nil {
		return store.Installed{}, err
	}
	return installed, nil
}

// Match returns the newest installed version for platformTag satisfying tag.
func (s *Service) Match(tag string, platformTag string) (store.Installed, error) {
	if err := requireTag(tag); err != nil {
		return store.Installed{}, err
	}
	normalized := version.Normalize(tag)
	versions, err := s.Layout.Versions(platformTag)
	if err != nil {
		return store.Installed{}, err
	}
	selected, ok := resolve.Select(versions, normalized)
	if !ok {
		return store.Installed{}, &NotInstalledError{Tag: tag, Platform: platformTag}
	}
	inst, ok, err := s.Layout.Lookup(selected, platformTag)
	if err != nil {
		return store.Installed{}, err
	}
	if !ok {
		return store.Installed{}, &NotInstalledError{Tag: tag, Platform: platformTag}
	}
	return inst, nil
}

// Use activates the newest installed version matching tag.
func (s *Service) Use(_ context.Context, tag string, platformTag string) (store.Installed, error) {
	if s.Switcher == nil {
		return store.Installed{}, missing("switcher")
	}
	var inst store.Installed
	err := s.withLock(func() error {
		var err error
		inst, err = s.Match(tag, platformTag)
		if err != nil {
			return err
		}
		return s.Switcher.Activate(inst)
	})
	if err != nil {
		return store.Installed{}, err
	}
	return inst, nil
}

// SetDefault activates the matching install and records it as the default.
func (s *Service) SetDefault(_ context.Context, tag string, platformTag string) (store.Installed, error) {
	if s.Switcher == nil {
		return store.Installed{}, missing("switcher")
	}
	var inst store.Installed
	err := s.withLock(func() error {
		var err error
		inst, err = s.Match(tag, platformTag)
		if err != nil {
			return err
		}
		if err := s.Switcher.Activate(inst); err != nil {
			return err
		}
		return s.Config.Set(config.Config{Default: inst.Version, Platform: inst.Platform})
	})
	if err != nil {
		return store.Installed{}, err
	}
	return inst, nil
}

// Default returns the recorded default, or nil when none is set.
func (s *Service) Default() (*config.Config, error) {
	return s.Config.Get()
}

// IsActive reports whether the activation link points into inst.
func (s *Service) IsActive(inst store.Installed) (bool, error) {
	if s.Switcher == nil {
		return false, missing("switcher")
	}
	return s.Switcher.PointsInto(inst)
}

// Remove deletes the newest installed version matching tag. The activation
// link is cleared first when it points into that version. A recorded default
// naming the version is left untouched.
func (s *Service) Remove(_ context.Context, tag string, platformTag string) (RemoveResult, error) {
	if s.Switcher == nil {
		return RemoveResult{}, missing("switcher")
	}
	var result RemoveResult
	err := s.withLock(func() error {
		inst, err := s.Match(tag, platformTag)
		if err != nil {
			return err
		}
		active, err := s.Switcher.PointsInto(inst)
		if err != nil {
			return err
		}
		if active {
			if err := s.Switcher.Clear(); err != nil {
				return err
			}
		}
		if err := s.Layout.RemoveVersion(inst); err != nil {
			return err
		}
		result = RemoveResult{Removed: inst, ClearedLink: active}
		return nil
	})
	if err != nil {
		return RemoveResult{}, err
	}
	return result, nil
}

// Current returns the active install, if any.
func (s *Service) Current() (store.Installed, bool, error) {
	if s.Switcher == nil {
		return store.Installed{}, false, missing("switcher")
	}
	return s.Switcher.Current()
}

// List returns every installed version, newest first, flagged with
// activation and default state.
func (s *Service) List() ([]ListItem, error) {
	if s.Switcher == nil {
		return nil, missing("switcher")
	}
	installed, err := s.Layout.Installed()
	if err != nil {
		return nil, err
	}
	active, hasActive, err := s.Switcher.Current()
	if err != nil {
		return nil, err
	}
	cfg, err := s.Config.Get()
	if err != nil {
		return nil, err
	}
	items := make([]ListItem, 0, len(installed))
	for _, inst := range installed {
		items = append(items, ListItem{
			Installed: inst,
			Active:    hasActive && active.Root == inst.Root,
			Default:   cfg != nil && cfg.Default == inst.Version && cfg.Platform == inst.Platform,
		})
	}
	return items, nil
}

// Remote returns catalog releases, newest first. ltsOnly keeps LTS lines only.
func (s *Service) Remote(ctx context.Context, ltsOnly bool) ([]catalog.Entry, error) {
	if s.Catalog == nil {
		return nil, missing("catalog")
	}
	entries, err := s.Catalog.Load(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]catalog.Entry, 0, len(entries))
	for _, entry := range entries {
		if ltsOnly && !entry.IsLTS() {
			continue
		}
		filtered = append(filtered, entry)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return version.Compare(filtered[i].Version, filtered[j].Version) > 0
	})
	return filtered, nil
}

// pointsInto is false when no switcher is configured.
func (s *Service) pointsInto(inst store.Installed) (bool, error) {
	if s.Switcher == nil {
		return false, nil
	}
	return s.Switcher.PointsInto(inst)
}

func (s *Service) withLock(fn func() error) error {
	if s.Lock == nil {
		return fn()
	}
	return s.Lock.With(fn)
}

func missing(name string) error {
	return fmt.Errorf(messages.LifecycleDependencyMissingFmt, ErrDependencyMissing, name)
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return logging.Discard()
	}
	return s.Logger
}

func requireTag(tag string) error {
	if strings.TrimSpace(tag) == "" {
		return errors.New(messages.LifecycleTagRequired)
	}
	return nil
}
