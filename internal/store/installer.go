package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/conn-castle/nodeswitch/internal/availability"
	"github.com/conn-castle/nodeswitch/internal/logging"
	"github.com/conn-castle/nodeswitch/internal/messages"
	"github.com/conn-castle/nodeswitch/internal/resolve"
)

var (
	// ErrDownload is returned when the release artifact cannot be downloaded.
	ErrDownload = errors.New("download failed")
	// ErrExtract is returned when the downloaded archive cannot be unpacked.
	ErrExtract = errors.New("extract failed")
)

// State is a step of the install lifecycle.
type State string

const (
	StateNotInstalled State = "not-installed"
	StateFetching     State = "fetching"
	StateExtracting   State = "extracting"
	StateInstalled    State = "installed"
)

// Downloader streams a URL into an open file.
type Downloader interface {
	Download(ctx context.Context, url string, dest *os.File) error
}

// Extractor unpacks an archive into dest.
type Extractor interface {
	Extract(archivePath string, dest string) error
}

// Installer downloads and unpacks releases into the store.
type Installer struct {
	Layout     Layout
	Mirror     string
	Downloader Downloader
	Extractor  Extractor
	Logger     *slog.Logger
	// Progress receives human-readable progress lines; nil discards them.
	Progress io.Writer
	// OnState observes lifecycle transitions.
	OnState func(State)
}

var (
	osRename    = os.Rename
	osRemoveAll = os.RemoveAll
	nowFn       = time.Now
)

// Install fetches the artifact for target and installs it under
// versions/<version>/<platform>. An existing install for the same pair is
// replaced only after the new tree is fully extracted.
func (i *Installer) Install(ctx context.Context, target resolve.Resolved) (Installed, error) {
	if err := i.validate(); err != nil {
		return Installed{}, err
	}
	logger := i.logger()
	root := i.Layout.VersionRoot(target.Version, target.Platform)
	parent := filepath.Dir(root)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return Installed{}, fmt.Errorf(messages.InstallCreateDirFmt, parent, err)
	}
	committed := false
	defer func() {
		if !committed {
			pruneEmpty(parent)
		}
	}()

	i.transition(StateFetching)
	_, _ = fmt.Fprintf(i.progress(), messages.InstallDownloadingFmt, target.Version, target.Platform)
	archivePath, err := i.download(ctx, target)
	if err != nil {
		i.transition(StateNotInstalled)
		return Installed{}, err
	}
	defer func() {
		_ = os.Remove(archivePath)
	}()

	staging, err := os.MkdirTemp(parent, "."+target.Platform+".staging-*")
	if err != nil {
		i.transition(StateNotInstalled)
		return Installed{}, fmt.Errorf(messages.InstallCreateDirFmt, parent, err)
	}
	defer func() {
		if !committed {
			_ = osRemoveAll(staging)
		}
	}()

	i.transition(StateExtracting)
	_, _ = fmt.Fprintf(i.progress(), messages.InstallExtractingFmt, target.Version)
	if err := i.Extractor.Extract(archivePath, staging); err != nil {
		i.transition(StateNotInstalled)
		return Installed{}, fmt.Errorf(messages.InstallExtractFmt, ErrExtract, archivePath, err)
	}
	_ = os.Remove(archivePath)

	stagedDir, err := Locate(staging, target.Version, target.Platform)
	if err != nil {
		i.transition(StateNotInstalled)
		return Installed{}, err
	}
	if err := swap(staging, root); err != nil {
		i.transition(StateNotInstalled)
		return Installed{}, err
	}
	committed = true
	i.transition(StateInstalled)

	dir := filepath.Join(root, filepath.Base(stagedDir))
	logger.Debug("installed release", "version", target.Version, "platform", target.Platform, "dir", dir)
	return Installed{Version: target.Version, Platform: target.Platform, Root: root, Dir: dir}, nil
}

// download writes the artifact to a temp file in the versions directory and
// returns its path. The temp file is removed on failure.
func (i *Installer) download(ctx context.Context, target resolve.Resolved) (string, error) {
	tmp, err := os.CreateTemp(i.Layout.VersionsDir(), ".download-*.zip")
	if err != nil {
		return "", fmt.Errorf(messages.InstallCreateTempFmt, err)
	}
	tmpName := tmp.Name()
	url := availability.ArtifactURL(i.Mirror, target.Version, target.Platform)
	if err := i.Downloader.Download(ctx, url, tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf(messages.InstallDownloadFmt, ErrDownload, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf(messages.InstallCloseTempFmt, err)
	}
	return tmpName, nil
}

// swap moves staging to root, keeping any previous root until the move succeeds.
func swap(staging string, root string) error {
	old := ""
	if _, err := os.Lstat(root); err == nil {
		old = filepath.Join(filepath.Dir(root), "."+filepath.Base(root)+".old-"+strconv.FormatInt(nowFn().UnixNano(), 36))
		if err := osRename(root, old); err != nil {
			return fmt.Errorf(messages.InstallSwapFmt, root, err)
		}
	}
	if err := osRename(staging, root); err != nil {
		if old != "" {
			if restoreErr := osRename(old, root); restoreErr != nil {
				return errors.Join(
					fmt.Errorf(messages.InstallSwapFmt, root, err),
					fmt.Errorf(messages.InstallRestoreFmt, root, restoreErr),
				)
			}
		}
		return fmt.Errorf(messages.InstallSwapFmt, root, err)
	}
	if old != "" {
		_ = osRemoveAll(old)
	}
	return nil
}

// pruneEmpty removes dir when nothing is left in it.
func pruneEmpty(dir string) {
	entries, err := os.ReadDir(dir)
	if err == nil && len(entries) == 0 {
		_ = os.Remove(dir)
	}
}

func (i *Installer) validate() error {
	switch {
	case i.Layout.Root == "":
		return errors.New(messages.InstallLayoutRootRequired)
	case i.Downloader == nil:
		return fmt.Errorf(messages.InstallCollaboratorRequired, "downloader")
	case i.Extractor == nil:
		return fmt.Errorf(messages.InstallCollaboratorRequired, "extractor")
	}
	return nil
}

func (i *Installer) transition(state State) {
	if i.OnState != nil {
		i.OnState(state)
	}
	i.logger().Debug("install state", "state", string(state))
}

func (i *Installer) progress() io.Writer {
	if i.Progress == nil {
		return io.Discard
	}
	return i.Progress
}

func (i *Installer) logger() *slog.Logger {
	if i.Logger == nil {
		return logging.Discard()
	}
	return i.Logger
}
