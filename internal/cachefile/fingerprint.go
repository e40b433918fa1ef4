package cachefile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Fingerprint is the hex SHA-256 digest computed over the ordered list of
// source files the framework will load (spec.md §4.9, §6).
type Fingerprint string

// ComputeMtime implements the default, fast fingerprint mode: SHA-256 of
// each "<path>:<mtime_seconds>" joined by newline.
func ComputeMtime(paths []string) (Fingerprint, error) {
	h := sha256.New()
	for i, p := range paths {
		if i > 0 {
			h.Write([]byte{'\n'})
		}
		fi, err := os.Stat(p)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "%s:%d", p, fi.ModTime().Unix())
	}
	return Fingerprint(hex.EncodeToString(h.Sum(nil))), nil
}

// ComputeDigest implements the opt-in, content-robust fingerprint mode:
// SHA-256 updated with path bytes, a NUL, the file's contents, and a
// trailing NUL, for each file in order.
func ComputeDigest(paths []string) (Fingerprint, error) {
	h := sha256.New()
	for _, p := range paths {
		h.Write([]byte(p))
		h.Write([]byte{0})
		f, err := os.Open(p)
		if err != nil {
			return "", err
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", err
		}
		h.Write([]byte{0})
	}
	return Fingerprint(hex.EncodeToString(h.Sum(nil))), nil
}
