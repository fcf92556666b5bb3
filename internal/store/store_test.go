package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/conn-castle/nodeswitch/internal/archive"
	"github.com/conn-castle/nodeswitch/internal/resolve"
	"github.com/conn-castle/nodeswitch/internal/testutil"
)

type fakeDownloader struct {
	data []byte
	err  error
	urls []string
}

func (f *fakeDownloader) Download(_ context.Context, url string, dest *os.File) error {
	f.urls = append(f.urls, url)
	if f.err != nil {
		return f.err
	}
	_, err := dest.Write(f.data)
	return err
}

type failingExtractor struct{}

func (failingExtractor) Extract(string, string) error { return errors.New("corrupt archive") }

func mkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func newInstaller(t *testing.T, data []byte) (*Installer, *fakeDownloader) {
	t.Helper()
	dl := &fakeDownloader{data: data}
	return &Installer{
		Layout:     Layout{Root: t.TempDir()},
		Mirror:     "https://mirror.example",
		Downloader: dl,
		Extractor:  archive.Zip{},
	}, dl
}

func TestLayoutPaths(t *testing.T) {
	l := Layout{Root: filepath.Join("a", "b")}
	cases := []struct {
		got  string
		want string
	}{
		{l.VersionsDir(), filepath.Join("a", "b", "versions")},
		{l.CurrentPath(), filepath.Join("a", "b", "current")},
		{l.CatalogPath(), filepath.Join("a", "b", "index.json")},
		{l.ConfigPath(), filepath.Join("a", "b", "config.json")},
		{l.SettingsPath(), filepath.Join("a", "b", "settings.toml")},
		{l.LockPath(), filepath.Join("a", "b", ".lock")},
		{l.VersionRoot("v1.2.3", "win-x64"), filepath.Join("a", "b", "versions", "v1.2.3", "win-x64")},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("expected %s, got %s", tc.want, tc.got)
		}
	}
}

func TestInstalledEmptyStore(t *testing.T) {
	installed, err := Layout{Root: t.TempDir()}.Installed()
	if err != nil {
		t.Fatalf("Installed error: %v", err)
	}
	if len(installed) != 0 {
		t.Fatalf("expected no installs, got %v", installed)
	}
}

func TestInstalledSortsAndSkipsHidden(t *testing.T) {
	l := Layout{Root: t.TempDir()}
	mkdirAll(t, filepath.Join(l.VersionRoot("v12.22.1", "win-x64"), "node-v12.22.1-win-x64"))
	mkdirAll(t, filepath.Join(l.VersionRoot("v14.0.0", "win-x86"), "node-v14.0.0-win-x86"))
	mkdirAll(t, filepath.Join(l.VersionRoot("v14.0.0", "win-x64"), "custom"))
	mkdirAll(t, filepath.Join(l.VersionsDir(), "v14.0.0", ".win-x64.staging-1", "node"))
	mkdirAll(t, filepath.Join(l.VersionRoot("v16.0.0", "win-x64")))
	mkdirAll(t, filepath.Join(l.VersionsDir(), "scratch", "win-x64", "node"))

	installed, err := l.Installed()
	if err != nil {
		t.Fatalf("Installed error: %v", err)
	}
	var got []string
	for _, inst := range installed {
		got = append(got, inst.Version+"/"+inst.Platform+"/"+filepath.Base(inst.Dir))
	}
	want := []string{
		"v14.0.0/win-x64/custom",
		"v14.0.0/win-x86/node-v14.0.0-win-x86",
		"v12.22.1/win-x64/node-v12.22.1-win-x64",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	versions, err := l.Versions("win-x64")
	if err != nil {
		t.Fatalf("Versions error: %v", err)
	}
	if !reflect.DeepEqual(versions, []string{"v14.0.0", "v12.22.1"}) {
		t.Fatalf("unexpected versions %v", versions)
	}
}

func TestLookup(t *testing.T) {
	l := Layout{Root: t.TempDir()}
	mkdirAll(t, filepath.Join(l.VersionRoot("v12.22.1", "win-x64"), "node-v12.22.1-win-x64"))

	inst, ok, err := l.Lookup("v12.22.1", "win-x64")
	if err != nil || !ok {
		t.Fatalf("expected install, got ok=%v err=%v", ok, err)
	}
	if inst.Dir != filepath.Join(l.VersionRoot("v12.22.1", "win-x64"), "node-v12.22.1-win-x64") {
		t.Fatalf("unexpected dir %s", inst.Dir)
	}
	if _, ok, err := l.Lookup("v12.22.1", "win-x86"); err != nil || ok {
		t.Fatalf("expected missing x86 install, got ok=%v err=%v", ok, err)
	}
}

func TestLocatePrefersConventionalName(t *testing.T) {
	root := t.TempDir()
	mkdirAll(t, filepath.Join(root, "aaa"))
	mkdirAll(t, filepath.Join(root, "node-v1.0.0-win-x64"))
	dir, err := Locate(root, "v1.0.0", "win-x64")
	if err != nil {
		t.Fatalf("Locate error: %v", err)
	}
	if filepath.Base(dir) != "node-v1.0.0-win-x64" {
		t.Fatalf("expected conventional dir, got %s", dir)
	}
}

func TestLocateFallsBackToFirstDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "README"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	mkdirAll(t, filepath.Join(root, "zeta"))
	mkdirAll(t, filepath.Join(root, "beta"))
	dir, err := Locate(root, "v1.0.0", "win-x64")
	if err != nil {
		t.Fatalf("Locate error: %v", err)
	}
	if filepath.Base(dir) != "beta" {
		t.Fatalf("expected first directory in name order, got %s", dir)
	}
}

func TestLocateNoDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "node.exe"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Locate(root, "v1.0.0", "win-x64"); !errors.Is(err, ErrLocate) {
		t.Fatalf("expected ErrLocate, got %v", err)
	}
}

func TestRemoveVersionPrunesEmptyParent(t *testing.T) {
	l := Layout{Root: t.TempDir()}
	mkdirAll(t, filepath.Join(l.VersionRoot("v1.0.0", "win-x64"), "node-v1.0.0-win-x64"))
	mkdirAll(t, filepath.Join(l.VersionRoot("v2.0.0", "win-x64"), "node-v2.0.0-win-x64"))
	mkdirAll(t, filepath.Join(l.VersionRoot("v2.0.0", "win-x86"), "node-v2.0.0-win-x86"))

	inst, _, _ := l.Lookup("v1.0.0", "win-x64")
	if err := l.RemoveVersion(inst); err != nil {
		t.Fatalf("RemoveVersion error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(l.VersionsDir(), "v1.0.0")); !os.IsNotExist(err) {
		t.Fatalf("expected empty version dir pruned, got %v", err)
	}

	inst, _, _ = l.Lookup("v2.0.0", "win-x64")
	if err := l.RemoveVersion(inst); err != nil {
		t.Fatalf("RemoveVersion error: %v", err)
	}
	if _, err := os.Stat(l.VersionRoot("v2.0.0", "win-x86")); err != nil {
		t.Fatalf("expected sibling platform kept: %v", err)
	}
}

func TestInstallExtractsIntoVersionRoot(t *testing.T) {
	data := testutil.ZipBytes(t, testutil.NodeArchive("v12.22.1", "win-x64"))
	inst, dl := newInstaller(t, data)
	var states []State
	inst.OnState = func(s State) { states = append(states, s) }
	var progress strings.Builder
	inst.Progress = &progress

	got, err := inst.Install(context.Background(), resolve.Resolved{Version: "v12.22.1", Platform: "win-x64"})
	if err != nil {
		t.Fatalf("Install error: %v", err)
	}
	wantDir := filepath.Join(inst.Layout.Root, "versions", "v12.22.1", "win-x64", "node-v12.22.1-win-x64")
	if got.Dir != wantDir {
		t.Fatalf("expected dir %s, got %s", wantDir, got.Dir)
	}
	if _, err := os.Stat(filepath.Join(wantDir, "node.exe")); err != nil {
		t.Fatalf("expected node.exe: %v", err)
	}
	if dl.urls[0] != "https://mirror.example/download/release/v12.22.1/node-v12.22.1-win-x64.zip" {
		t.Fatalf("unexpected url %s", dl.urls[0])
	}
	wantStates := []State{StateFetching, StateExtracting, StateInstalled}
	if !reflect.DeepEqual(states, wantStates) {
		t.Fatalf("expected states %v, got %v", wantStates, states)
	}
	if !strings.Contains(progress.String(), "Downloading node v12.22.1 (win-x64)") {
		t.Fatalf("unexpected progress %q", progress.String())
	}
	assertNoLeftovers(t, inst.Layout)
}

func TestInstallReplacesExistingTree(t *testing.T) {
	data := testutil.ZipBytes(t, testutil.NodeArchive("v12.22.1", "win-x64"))
	inst, _ := newInstaller(t, data)
	target := resolve.Resolved{Version: "v12.22.1", Platform: "win-x64"}
	stale := filepath.Join(inst.Layout.VersionRoot("v12.22.1", "win-x64"), "node-v12.22.1-win-x64", "stale.txt")
	mkdirAll(t, filepath.Dir(stale))
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatalf("write stale: %v", err)
	}

	if _, err := inst.Install(context.Background(), target); err != nil {
		t.Fatalf("Install error: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale file replaced, got %v", err)
	}
	assertNoLeftovers(t, inst.Layout)
}

func TestInstallDownloadFailure(t *testing.T) {
	inst, dl := newInstaller(t, nil)
	dl.err = errors.New("connection reset")
	var states []State
	inst.OnState = func(s State) { states = append(states, s) }

	_, err := inst.Install(context.Background(), resolve.Resolved{Version: "v1.0.0", Platform: "win-x64"})
	if !errors.Is(err, ErrDownload) {
		t.Fatalf("expected ErrDownload, got %v", err)
	}
	if states[len(states)-1] != StateNotInstalled {
		t.Fatalf("expected rollback to not-installed, got %v", states)
	}
	if _, ok, _ := inst.Layout.Lookup("v1.0.0", "win-x64"); ok {
		t.Fatalf("expected nothing installed")
	}
	assertNoLeftovers(t, inst.Layout)
	assertNoVersionDir(t, inst.Layout, "v1.0.0")
}

func TestInstallExtractFailureKeepsPreviousTree(t *testing.T) {
	inst, _ := newInstaller(t, []byte("not a zip"))
	inst.Extractor = failingExtractor{}
	previous := filepath.Join(inst.Layout.VersionRoot("v1.0.0", "win-x64"), "node-v1.0.0-win-x64", "node.exe")
	mkdirAll(t, filepath.Dir(previous))
	if err := os.WriteFile(previous, []byte("old"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := inst.Install(context.Background(), resolve.Resolved{Version: "v1.0.0", Platform: "win-x64"})
	if !errors.Is(err, ErrExtract) {
		t.Fatalf("expected ErrExtract, got %v", err)
	}
	if _, err := os.Stat(previous); err != nil {
		t.Fatalf("expected previous install kept: %v", err)
	}
	assertNoLeftovers(t, inst.Layout)
}

func TestInstallArchiveWithoutDirectory(t *testing.T) {
	data := testutil.ZipBytes(t, map[string]string{"node.exe": "bare"})
	inst, _ := newInstaller(t, data)
	_, err := inst.Install(context.Background(), resolve.Resolved{Version: "v1.0.0", Platform: "win-x64"})
	if !errors.Is(err, ErrLocate) {
		t.Fatalf("expected ErrLocate, got %v", err)
	}
	if _, ok, _ := inst.Layout.Lookup("v1.0.0", "win-x64"); ok {
		t.Fatalf("expected nothing installed")
	}
	assertNoLeftovers(t, inst.Layout)
	assertNoVersionDir(t, inst.Layout, "v1.0.0")
}

func TestInstallSwapFailureRestoresPrevious(t *testing.T) {
	data := testutil.ZipBytes(t, testutil.NodeArchive("v1.0.0", "win-x64"))
	inst, _ := newInstaller(t, data)
	previous := filepath.Join(inst.Layout.VersionRoot("v1.0.0", "win-x64"), "node-v1.0.0-win-x64", "node.exe")
	mkdirAll(t, filepath.Dir(previous))
	if err := os.WriteFile(previous, []byte("old"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	origRename := osRename
	calls := 0
	osRename = func(oldpath, newpath string) error {
		calls++
		if calls == 2 {
			return errors.New("rename denied")
		}
		return origRename(oldpath, newpath)
	}
	t.Cleanup(func() { osRename = origRename })

	_, err := inst.Install(context.Background(), resolve.Resolved{Version: "v1.0.0", Platform: "win-x64"})
	if err == nil || !strings.Contains(err.Error(), "rename denied") {
		t.Fatalf("expected swap error, got %v", err)
	}
	data, readErr := os.ReadFile(previous)
	if readErr != nil || string(data) != "old" {
		t.Fatalf("expected previous install restored, got %q %v", data, readErr)
	}
}

func TestInstallRequiresCollaborators(t *testing.T) {
	inst := &Installer{Layout: Layout{Root: t.TempDir()}}
	if _, err := inst.Install(context.Background(), resolve.Resolved{Version: "v1.0.0", Platform: "win-x64"}); err == nil {
		t.Fatalf("expected missing downloader error")
	}
	inst = &Installer{Downloader: &fakeDownloader{}, Extractor: archive.Zip{}}
	if _, err := inst.Install(context.Background(), resolve.Resolved{Version: "v1.0.0", Platform: "win-x64"}); err == nil {
		t.Fatalf("expected missing root error")
	}
}

// assertNoVersionDir fails when a failed first install left versions/<v> behind.
func assertNoVersionDir(t *testing.T, l Layout, v string) {
	t.Helper()
	dir := filepath.Join(l.VersionsDir(), v)
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected %s removed, got %v", dir, err)
	}
}

// assertNoLeftovers fails when temp archives, staging, or backup trees remain.
func assertNoLeftovers(t *testing.T, l Layout) {
	t.Helper()
	err := filepath.Walk(l.VersionsDir(), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(info.Name(), ".") {
			t.Fatalf("unexpected leftover %s", path)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("walk: %v", err)
	}
}
