//go:build unix

package link

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/conn-castle/nodeswitch/internal/store"
)

func installFixture(t *testing.T, l store.Layout, v string, platformTag string) store.Installed {
	t.Helper()
	dir := filepath.Join(l.VersionRoot(v, platformTag), "node-"+v+"-"+platformTag)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	return store.Installed{Version: v, Platform: platformTag, Root: l.VersionRoot(v, platformTag), Dir: dir}
}

func newSwitcher(t *testing.T) (*Switcher, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	return &Switcher{
		Layout: store.Layout{Root: t.TempDir()},
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
	}, &logs
}

func TestActivateCreatesAndReplacesLink(t *testing.T) {
	s, _ := newSwitcher(t)
	first := installFixture(t, s.Layout, "v12.22.1", "win-x64")
	second := installFixture(t, s.Layout, "v14.0.0", "win-x64")

	if err := s.Activate(first); err != nil {
		t.Fatalf("Activate error: %v", err)
	}
	target, ok, err := s.Target()
	if err != nil || !ok || target != first.Dir {
		t.Fatalf("expected link to %s, got %s ok=%v err=%v", first.Dir, target, ok, err)
	}

	if err := s.Activate(second); err != nil {
		t.Fatalf("Activate error: %v", err)
	}
	current, ok, err := s.Current()
	if err != nil || !ok {
		t.Fatalf("expected current install, got ok=%v err=%v", ok, err)
	}
	if current.Version != "v14.0.0" {
		t.Fatalf("expected v14.0.0, got %s", current.Version)
	}
	entries, err := os.ReadDir(s.Layout.Root)
	if err != nil {
		t.Fatalf("read root: %v", err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp-") {
			t.Fatalf("unexpected temp link %s", entry.Name())
		}
	}
}

func TestActivateRejectsMissingTarget(t *testing.T) {
	s, _ := newSwitcher(t)
	err := s.Activate(store.Installed{Dir: filepath.Join(s.Layout.Root, "missing")})
	if err == nil {
		t.Fatalf("expected missing target error")
	}
	if err := s.Activate(store.Installed{}); err == nil {
		t.Fatalf("expected empty target error")
	}
	if _, ok, _ := s.Target(); ok {
		t.Fatalf("expected no link after failed activation")
	}
}

func TestActivateRefusesRealDirectory(t *testing.T) {
	s, _ := newSwitcher(t)
	inst := installFixture(t, s.Layout, "v12.22.1", "win-x64")
	if err := os.MkdirAll(s.Layout.CurrentPath(), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	err := s.Activate(inst)
	if err == nil || !strings.Contains(err.Error(), "not a link") {
		t.Fatalf("expected not-a-link error, got %v", err)
	}
}

func TestActivateFallsBackToRemoveThenRename(t *testing.T) {
	s, _ := newSwitcher(t)
	first := installFixture(t, s.Layout, "v12.22.1", "win-x64")
	second := installFixture(t, s.Layout, "v14.0.0", "win-x64")
	if err := s.Activate(first); err != nil {
		t.Fatalf("Activate error: %v", err)
	}

	origRename := osRename
	calls := 0
	osRename = func(oldpath, newpath string) error {
		calls++
		if calls == 1 {
			return errors.New("access denied")
		}
		return origRename(oldpath, newpath)
	}
	t.Cleanup(func() { osRename = origRename })

	if err := s.Activate(second); err != nil {
		t.Fatalf("Activate error: %v", err)
	}
	target, _, _ := s.Target()
	if target != second.Dir {
		t.Fatalf("expected link to %s, got %s", second.Dir, target)
	}
}

func TestClear(t *testing.T) {
	s, _ := newSwitcher(t)
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear on missing link error: %v", err)
	}
	inst := installFixture(t, s.Layout, "v12.22.1", "win-x64")
	if err := s.Activate(inst); err != nil {
		t.Fatalf("Activate error: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if _, err := os.Lstat(s.Layout.CurrentPath()); !os.IsNotExist(err) {
		t.Fatalf("expected link removed, got %v", err)
	}
	if _, err := os.Stat(inst.Dir); err != nil {
		t.Fatalf("expected install kept: %v", err)
	}
}

func TestCurrentDanglingLinkWarns(t *testing.T) {
	s, logs := newSwitcher(t)
	inst := installFixture(t, s.Layout, "v12.22.1", "win-x64")
	if err := s.Activate(inst); err != nil {
		t.Fatalf("Activate error: %v", err)
	}
	if err := os.RemoveAll(inst.Root); err != nil {
		t.Fatalf("remove: %v", err)
	}
	_, ok, err := s.Current()
	if err != nil || ok {
		t.Fatalf("expected no active version, got ok=%v err=%v", ok, err)
	}
	if !strings.Contains(logs.String(), "no longer exists") {
		t.Fatalf("expected dangling warning, got %q", logs.String())
	}
}

func TestCurrentOutsideStoreWarns(t *testing.T) {
	s, logs := newSwitcher(t)
	if err := os.Symlink(t.TempDir(), s.Layout.CurrentPath()); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	_, ok, err := s.Current()
	if err != nil || ok {
		t.Fatalf("expected no active version, got ok=%v err=%v", ok, err)
	}
	if !strings.Contains(logs.String(), "outside") {
		t.Fatalf("expected outside-store warning, got %q", logs.String())
	}
}

func TestPointsInto(t *testing.T) {
	s, _ := newSwitcher(t)
	active := installFixture(t, s.Layout, "v12.22.1", "win-x64")
	other := installFixture(t, s.Layout, "v12.22.1", "win-x86")
	if ok, err := s.PointsInto(active); err != nil || ok {
		t.Fatalf("expected false without link, got ok=%v err=%v", ok, err)
	}
	if err := s.Activate(active); err != nil {
		t.Fatalf("Activate error: %v", err)
	}
	if ok, _ := s.PointsInto(active); !ok {
		t.Fatalf("expected link inside active install")
	}
	if ok, _ := s.PointsInto(other); ok {
		t.Fatalf("expected link outside other install")
	}
}
