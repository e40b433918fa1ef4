// Package arena implements the String Arena Builder: a streaming,
// append-only byte buffer that deduplicates (bytes, encoding) pairs and
// hands back packed references suitable for a value column.
package arena

import (
	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/swiss"
	"github.com/shopify/i18ncompact/internal/base"
)

// candidate is one already-inserted (bytes, encoding) pair sharing a hash
// bucket; Builder keeps a short list per hash to resolve collisions by an
// explicit byte comparison against the arena itself (no bytes are stored
// twice).
type candidate struct {
	offset int64
	length int
	enc    base.EncodingID
}

// Builder accumulates strings into one contiguous buffer. It is not safe
// for concurrent use; the Compactor drives it from a single goroutine per
// spec.md §5.
type Builder struct {
	buf       []byte
	dedup     *swiss.Map[uint64, []candidate]
	finalized bool
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{
		buf:   make([]byte, 0, 4096),
		dedup: swiss.New[uint64, []candidate](64),
	}
}

// ErrTooLarge is returned by Append when the input exceeds the packable
// string length; the caller must route the value through the object side
// table instead (spec.md §4.1).
var ErrTooLarge = errors.New("arena: string too large to pack")

// Append inserts data tagged with enc, returning its packed reference. An
// identical (bytes, encoding) pair previously appended returns the same
// reference without growing the buffer (spec.md invariant 3).
func (b *Builder) Append(data []byte, enc base.EncodingID) (base.PackedRef, error) {
	if b.finalized {
		panic("arena: Append called after finalize")
	}
	if len(data) > base.MaxStringLength {
		return 0, errors.Wrapf(ErrTooLarge, "length %d exceeds %d", len(data), base.MaxStringLength)
	}

	h := hash(data, enc)
	if bucket, ok := b.dedup.Get(h); ok {
		for _, c := range bucket {
			if c.enc == enc && c.length == len(data) &&
				string(b.buf[c.offset:c.offset+int64(c.length)]) == string(data) {
				return base.PackString(c.offset, c.length, c.enc), nil
			}
		}
	}

	offset := int64(len(b.buf))
	if offset > base.MaxArenaOffset {
		return 0, errors.Newf("arena: buffer exceeds %d bytes", base.MaxArenaOffset)
	}
	b.buf = append(b.buf, data...)

	c := candidate{offset: offset, length: len(data), enc: enc}
	bucket, _ := b.dedup.Get(h)
	b.dedup.Put(h, append(bucket, c))

	return base.PackString(c.offset, c.length, c.enc), nil
}

func hash(data []byte, enc base.EncodingID) uint64 {
	d := xxhash.New()
	d.Write(data)
	d.Write([]byte{byte(enc)})
	return d.Sum64()
}

// Finalize freezes the arena and returns its immutable byte buffer. After
// Finalize, Append must not be called again.
func (b *Builder) Finalize() []byte {
	b.finalized = true
	return b.buf
}

// Len returns the number of bytes appended so far (including before
// finalize), useful for diagnostics.
func (b *Builder) Len() int { return len(b.buf) }

// Slice reads back a range of the (possibly not-yet-finalized) arena,
// the same way for a finalized one. Used by the lookup engine and by
// tests.
func Slice(buf []byte, offset int64, length int) []byte {
	return buf[offset : offset+int64(length)]
}
