// Package link maintains the single activation link that points at the active install.
package link

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/conn-castle/nodeswitch/internal/fsutil"
	"github.com/conn-castle/nodeswitch/internal/logging"
	"github.com/conn-castle/nodeswitch/internal/messages"
	"github.com/conn-castle/nodeswitch/internal/store"
)

var (
	makeLink = createLink
	osRename = os.Rename
	nowFn    = time.Now
)

// Switcher swaps the activation link between installs in Layout.
type Switcher struct {
	Layout store.Layout
	Logger *slog.Logger
}

// Target returns the raw link target. ok is false when no link exists.
func (s *Switcher) Target() (string, bool, error) {
	path := s.Layout.CurrentPath()
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf(messages.LinkReadFmt, path, err)
	}
	if !isLink(info) {
		return "", false, fmt.Errorf(messages.LinkNotSymlinkFmt, path)
	}
	target, err := os.Readlink(path)
	if err != nil {
		return "", false, fmt.Errorf(messages.LinkReadFmt, path, err)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	return filepath.Clean(target), true, nil
}

// Activate points the link at inst.Dir. The link is replaced in one rename
// where the platform allows it, so readers never observe a missing link.
func (s *Switcher) Activate(inst store.Installed) error {
	if inst.Dir == "" {
		return errors.New(messages.LinkTargetMissing)
	}
	info, err := os.Stat(inst.Dir)
	if err != nil {
		return fmt.Errorf(messages.LinkTargetStatFmt, inst.Dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf(messages.LinkTargetNotDirFmt, inst.Dir)
	}
	if _, _, err := s.Target(); err != nil {
		return err
	}

	path := s.Layout.CurrentPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf(messages.LinkCreateFmt, path, err)
	}
	tmp := path + ".tmp-" + strconv.FormatInt(nowFn().UnixNano(), 36)
	if err := makeLink(inst.Dir, tmp); err != nil {
		return fmt.Errorf(messages.LinkCreateFmt, path, err)
	}
	if err := osRename(tmp, path); err != nil {
		// Windows cannot rename over an existing link.
		if removeErr := os.Remove(path); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			_ = os.Remove(tmp)
			return fmt.Errorf(messages.LinkReplaceFmt, path, removeErr)
		}
		if err := osRename(tmp, path); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf(messages.LinkReplaceFmt, path, err)
		}
	}
	s.logger().Debug("activated", "link", path, "target", inst.Dir)
	return nil
}

// Clear removes the link. A missing link is not an error.
func (s *Switcher) Clear() error {
	_, ok, err := s.Target()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	path := s.Layout.CurrentPath()
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf(messages.LinkRemoveFmt, path, err)
	}
	return nil
}

// Current returns the install the link points at. A dangling link, or one
// pointing outside the store, is reported as no active version with a warning.
func (s *Switcher) Current() (store.Installed, bool, error) {
	target, ok, err := s.Target()
	if err != nil || !ok {
		return store.Installed{}, false, err
	}
	if !fsutil.IsWithin(s.Layout.VersionsDir(), target) {
		s.logger().Warn(fmt.Sprintf(messages.LinkOutsideStoreFmt, target, s.Layout.VersionsDir()))
		return store.Installed{}, false, nil
	}
	if _, err := os.Stat(target); err != nil {
		s.logger().Warn(fmt.Sprintf(messages.LinkDanglingWarnFmt, target))
		return store.Installed{}, false, nil
	}
	installed, err := s.Layout.Installed()
	if err != nil {
		return store.Installed{}, false, err
	}
	for _, inst := range installed {
		if filepath.Clean(inst.Dir) == target {
			return inst, true, nil
		}
	}
	s.logger().Warn(fmt.Sprintf(messages.LinkDanglingWarnFmt, target))
	return store.Installed{}, false, nil
}

// PointsInto reports whether the link target lies inside inst.Root.
func (s *Switcher) PointsInto(inst store.Installed) (bool, error) {
	target, ok, err := s.Target()
	if err != nil || !ok {
		return false, err
	}
	return fsutil.IsWithin(inst.Root, target), nil
}

func (s *Switcher) logger() *slog.Logger {
	if s.Logger == nil {
		return logging.Discard()
	}
	return s.Logger
}
