//go:build !unix

package cachefile

// fsyncDir is a no-op on platforms without a directory file descriptor to
// fsync (notably Windows, where rename durability works differently).
func fsyncDir(path string) error {
	return nil
}
