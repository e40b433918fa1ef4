package cachefile

import (
	"bytes"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// compressArena always Snappy-compresses the arena section: arenas are
// large, mostly-reused UTF-8 text, and Snappy's fast decompression keeps
// cold-cache loads quick (SPEC_FULL.md §4.13).
func compressArena(raw []byte) []byte {
	return snappy.Encode(nil, raw)
}

func decompressArena(compressed []byte) ([]byte, error) {
	return snappy.Decode(nil, compressed)
}

// wrapZstd wraps w so every byte written to the returned writer is zstd
// compressed. Callers must Close the returned writer to flush the final
// frame before closing the underlying file.
func wrapZstd(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
}

// unwrapZstd decompresses an entire zstd-framed buffer read from disk.
func unwrapZstd(compressed []byte) ([]byte, error) {
	d, err := zstd.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer d.Close()
	return io.ReadAll(d)
}
