//go:build unix

package cachefile

import (
	"path/filepath"

	"golang.org/x/sys/unix"
)

// fsyncDir flushes the directory entry created by the rename in Save, so
// the rename itself survives a crash immediately afterward. This is the
// one part of the durable write path that cannot be expressed with
// os/io alone (SPEC_FULL.md §4.13).
func fsyncDir(path string) error {
	dir := filepath.Dir(path)
	fd, err := unix.Open(dir, unix.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer unix.Close(fd)
	return unix.Fsync(fd)
}
