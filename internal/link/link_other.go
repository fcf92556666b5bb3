//go:build !windows

package link

import "os"

func createLink(target string, path string) error {
	return os.Symlink(target, path)
}

func isLink(info os.FileInfo) bool {
	return info.Mode()&os.ModeSymlink != 0
}
