//go:build windows

package link

import (
	"errors"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
)

const fsctlSetReparsePoint = 0x000900A4

var osSymlinkFn = os.Symlink

// createLink makes a directory symlink, or a junction when the process may
// not create symlinks (no elevation and Developer Mode off).
func createLink(target string, path string) error {
	err := osSymlinkFn(target, path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, windows.ERROR_PRIVILEGE_NOT_HELD) {
		return err
	}
	return createJunction(target, path)
}

// isLink accepts symlinks and mount points. Lstat reports junctions as
// irregular files rather than symlinks.
func isLink(info os.FileInfo) bool {
	return info.Mode()&(os.ModeSymlink|os.ModeIrregular) != 0
}

// createJunction creates path as an empty directory and sets a mount point
// reparse tag on it that targets the absolute form of target.
func createJunction(target string, path string) error {
	abs, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	if err := os.Mkdir(path, 0o755); err != nil {
		return err
	}
	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	handle, err := windows.CreateFile(
		name,
		windows.GENERIC_WRITE,
		0,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_OPEN_REPARSE_POINT|windows.FILE_FLAG_BACKUP_SEMANTICS,
		0,
	)
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	data := junctionReparseData(abs)
	var returned uint32
	err = windows.DeviceIoControl(handle, fsctlSetReparsePoint, &data[0], uint32(len(data)), nil, 0, &returned, nil)
	_ = windows.CloseHandle(handle)
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}
