// Package store owns the on-disk layout of installed runtimes.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/conn-castle/nodeswitch/internal/availability"
	"github.com/conn-castle/nodeswitch/internal/messages"
	"github.com/conn-castle/nodeswitch/internal/platform"
	"github.com/conn-castle/nodeswitch/internal/version"
)

// ErrLocate is returned when an extracted archive has no usable top-level directory.
var ErrLocate = errors.New("locate extracted directory")

// Layout derives every store path from Root.
type Layout struct {
	Root string
}

// VersionsDir holds versions/<version>/<platform>/ trees.
func (l Layout) VersionsDir() string { return filepath.Join(l.Root, "versions") }

// CurrentPath is the activation link.
func (l Layout) CurrentPath() string { return filepath.Join(l.Root, "current") }

// CatalogPath is the cached release catalog.
func (l Layout) CatalogPath() string { return filepath.Join(l.Root, "index.json") }

// ConfigPath is the persisted default and platform.
func (l Layout) ConfigPath() string { return filepath.Join(l.Root, "config.json") }

// SettingsPath is the optional user settings file.
func (l Layout) SettingsPath() string { return filepath.Join(l.Root, "settings.toml") }

// LockPath is the advisory lock guarding store mutations.
func (l Layout) LockPath() string { return filepath.Join(l.Root, ".lock") }

// VersionRoot is the install root for one version and platform.
func (l Layout) VersionRoot(v string, platformTag string) string {
	return filepath.Join(l.VersionsDir(), v, platformTag)
}

// Installed is one runtime present in the store.
type Installed struct {
	Version  string
	Platform string
	// Root is versions/<version>/<platform>.
	Root string
	// Dir is the extracted directory inside Root that activation points at.
	Dir string
}

// Installed enumerates versions/*/* in version order, newest first.
// Hidden entries and roots without an extracted directory are skipped.
func (l Layout) Installed() ([]Installed, error) {
	versionDirs, err := os.ReadDir(l.VersionsDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf(messages.InstallListFmt, l.VersionsDir(), err)
	}
	var installed []Installed
	for _, vd := range versionDirs {
		if !vd.IsDir() || strings.HasPrefix(vd.Name(), ".") || !version.IsRelease(vd.Name()) {
			continue
		}
		platformDirs, err := os.ReadDir(filepath.Join(l.VersionsDir(), vd.Name()))
		if err != nil {
			return nil, fmt.Errorf(messages.InstallListFmt, l.VersionsDir(), err)
		}
		for _, pd := range platformDirs {
			if !pd.IsDir() || strings.HasPrefix(pd.Name(), ".") || !platform.Valid(pd.Name()) {
				continue
			}
			root := l.VersionRoot(vd.Name(), pd.Name())
			dir, err := Locate(root, vd.Name(), pd.Name())
			if err != nil {
				continue
			}
			installed = append(installed, Installed{
				Version:  vd.Name(),
				Platform: pd.Name(),
				Root:     root,
				Dir:      dir,
			})
		}
	}
	sort.SliceStable(installed, func(i, j int) bool {
		if c := version.Compare(installed[i].Version, installed[j].Version); c != 0 {
			return c > 0
		}
		return installed[i].Platform < installed[j].Platform
	})
	return installed, nil
}

// Versions returns the distinct installed versions for platformTag.
func (l Layout) Versions(platformTag string) ([]string, error) {
	installed, err := l.Installed()
	if err != nil {
		return nil, err
	}
	var versions []string
	for _, inst := range installed {
		if inst.Platform == platformTag {
			versions = append(versions, inst.Version)
		}
	}
	return versions, nil
}

// Lookup returns the install for an exact version and platform.
func (l Layout) Lookup(v string, platformTag string) (Installed, bool, error) {
	root := l.VersionRoot(v, platformTag)
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Installed{}, false, nil
		}
		return Installed{}, false, fmt.Errorf(messages.InstallListFmt, root, err)
	}
	if !info.IsDir() {
		return Installed{}, false, nil
	}
	dir, err := Locate(root, v, platformTag)
	if err != nil {
		if errors.Is(err, ErrLocate) {
			return Installed{}, false, nil
		}
		return Installed{}, false, err
	}
	return Installed{Version: v, Platform: platformTag, Root: root, Dir: dir}, true, nil
}

// RemoveVersion deletes an install root and prunes its version directory when empty.
func (l Layout) RemoveVersion(inst Installed) error {
	if err := os.RemoveAll(inst.Root); err != nil {
		return fmt.Errorf(messages.InstallRemoveFmt, inst.Root, err)
	}
	pruneEmpty(filepath.Dir(inst.Root))
	return nil
}

// Locate returns the extracted directory inside root: the conventional
// node-<version>-<platform> name when present, otherwise the first
// subdirectory in name order.
func Locate(root string, v string, platformTag string) (string, error) {
	conventional := filepath.Join(root, availability.ArtifactName(v, platformTag))
	if info, err := os.Stat(conventional); err == nil && info.IsDir() {
		return conventional, nil
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf(messages.InstallLocateReadFmt, root, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			return filepath.Join(root, entry.Name()), nil
		}
	}
	return "", fmt.Errorf(messages.InstallLocateNoChildFmt, ErrLocate, v, platformTag)
}
