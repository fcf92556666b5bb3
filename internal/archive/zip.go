// Package archive extracts release archives into a destination directory.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/conn-castle/nodeswitch/internal/fsutil"
	"github.com/conn-castle/nodeswitch/internal/messages"
)

// Zip extracts zip archives.
type Zip struct{}

// Extract unpacks archivePath into dest, refusing entries that escape dest.
func (Zip) Extract(archivePath string, dest string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf(messages.ArchiveOpenFmt, archivePath, err)
	}
	defer func() { _ = reader.Close() }()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf(messages.ArchiveMkdirFmt, dest, err)
	}
	for _, file := range reader.File {
		if err := extractEntry(file, dest); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(file *zip.File, dest string) error {
	name := strings.ReplaceAll(file.Name, "\\", "/")
	target := filepath.Join(dest, filepath.FromSlash(name))
	if filepath.IsAbs(filepath.FromSlash(name)) || !fsutil.IsWithin(dest, target) {
		return fmt.Errorf(messages.ArchiveIllegalPathFmt, file.Name)
	}

	mode := file.Mode()
	switch {
	case mode.IsDir():
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf(messages.ArchiveMkdirFmt, target, err)
		}
		return nil
	case !mode.IsRegular():
		return fmt.Errorf(messages.ArchiveUnsupportedEntry, file.Name)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf(messages.ArchiveMkdirFmt, filepath.Dir(target), err)
	}
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf(messages.ArchiveOpenEntryFmt, file.Name, err)
	}
	defer func() { _ = src.Close() }()

	perm := mode.Perm()
	if perm == 0 {
		perm = 0o644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf(messages.ArchiveCreateFileFmt, target, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return fmt.Errorf(messages.ArchiveCopyFileFmt, target, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf(messages.ArchiveCopyFileFmt, target, err)
	}
	return nil
}
