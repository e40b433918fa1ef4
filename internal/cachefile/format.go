package cachefile

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/shopify/i18ncompact/internal/base"
)

// magic identifies an i18ncompact cache file. It is the literal 5 bytes
// "I18NC" (spec.md §6, "byte-exact").
var magic = [5]byte{'I', '1', '8', 'N', 'C'}

// version is the only frame version this package knows how to read or
// write. A file stamped with any other version is treated as a cache
// miss (spec.md §4.9's invalidation rule), not an error.
const version uint32 = 1

// Frame flags, a single byte following the version.
const (
	flagZstdFrame byte = 1 << 0
)

type header struct {
	version uint32
	flags   byte
}

// writeHeader writes magic, version, and flags, mirroring the fixed-width
// prefix sstable/table.go's footer keeps at a known position — here at
// the front of the file instead of the end, since this format has no
// need to be read backwards from a trailer.
func writeHeader(w io.Writer, h header) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	var buf [5]byte
	binary.LittleEndian.PutUint32(buf[:4], h.version)
	buf[4] = h.flags
	_, err := w.Write(buf[:])
	return err
}

// readHeader parses and validates the frame prefix. ok is false (with a
// nil error) for any expected "this isn't a valid/compatible cache file"
// condition; err is reserved for unexpected I/O failures.
func readHeader(r *bufio.Reader) (h header, ok bool, err error) {
	var buf [10]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return header{}, false, nil
		}
		return header{}, false, err
	}
	if string(buf[:5]) != string(magic[:]) {
		return header{}, false, nil
	}
	h.version = binary.LittleEndian.Uint32(buf[5:9])
	if h.version != version {
		return header{}, false, nil
	}
	h.flags = buf[9]
	return h, true, nil
}

// writeSection writes a length-prefixed byte section, the same
// "varint/fixed length then payload" shape as an sstable block handle.
func writeSection(w io.Writer, payload []byte) error {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// readSection reads one writeSection-framed payload. A corrupt length
// prefix is reported as ok=false so the caller can fall back to a fresh
// compaction: a length above maxSection is rejected before any
// allocation, while a smaller length that implies more data than remains
// is allocated and then rejected when the read comes up short.
func readSection(r io.Reader) (payload []byte, ok bool, err error) {
	var lenBuf [8]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, false, nil
		}
		return nil, false, err
	}
	n := binary.LittleEndian.Uint64(lenBuf[:])
	const maxSection = 1 << 34 // generous but bounded: rules out a corrupt length wedging the allocator
	if n > maxSection {
		return nil, false, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, false, nil
		}
		return nil, false, err
	}
	return buf, true, nil
}

// corruptSection is a convenience for the handful of call sites that want
// to escalate an otherwise-silent "ok=false" into a base.ErrCorrupt-marked
// error, used only when the caller has already committed to treating the
// file as present but unreadable (as opposed to simply stale).
func corruptSection(name string) error {
	return base.CorruptionErrorf("cachefile: malformed %s section", name)
}
