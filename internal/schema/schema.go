// Package schema implements the Key Schema: the bidirectional,
// insertion-ordered mapping from a dotted flat key to a dense column
// index, shared across every locale of one index instance.
package schema

import (
	"github.com/cockroachdb/swiss"
)

// Builder interns flat keys into dense column indices while compaction is
// in progress. It must not be used concurrently.
type Builder struct {
	byKey     *swiss.Map[string, int]
	keys      []string
	finalized bool
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{
		byKey: swiss.New[string, int](64),
		keys:  make([]string, 0, 64),
	}
}

// Intern returns the existing column index for flatKey, or creates one.
// Intern must not be called after Finalize (spec.md §4.3).
func (b *Builder) Intern(flatKey string) int {
	if b.finalized {
		panic("schema: Intern called after finalize")
	}
	if idx, ok := b.byKey.Get(flatKey); ok {
		return idx
	}
	idx := len(b.keys)
	b.byKey.Put(flatKey, idx)
	b.keys = append(b.keys, flatKey)
	return idx
}

// Lookup returns the column index for flatKey, if interned.
func (b *Builder) Lookup(flatKey string) (int, bool) {
	return b.byKey.Get(flatKey)
}

// Len reports the number of interned keys so far.
func (b *Builder) Len() int { return len(b.keys) }

// Finalize freezes the schema. The schema is contiguous by construction
// (spec.md invariant 4): Intern always assigns len(keys) as the next
// index, so there are never gaps.
func (b *Builder) Finalize() *Schema {
	b.finalized = true
	byKey := swiss.New[string, int](len(b.keys))
	for i, k := range b.keys {
		byKey.Put(k, i)
	}
	keys := make([]string, len(b.keys))
	copy(keys, b.keys)
	return &Schema{byKey: byKey, keys: keys}
}

// Schema is the frozen, read-only key schema.
type Schema struct {
	byKey *swiss.Map[string, int]
	keys  []string
}

// Lookup resolves a flat key to its column index.
func (s *Schema) Lookup(flatKey string) (int, bool) {
	return s.byKey.Get(flatKey)
}

// Key returns the flat key at column idx.
func (s *Schema) Key(idx int) string { return s.keys[idx] }

// Len reports the number of columns (N in spec.md's [0, N) range).
func (s *Schema) Len() int { return len(s.keys) }

// Keys returns the full ordered list of flat keys, insertion-order
// stable. Callers must not mutate the returned slice.
func (s *Schema) Keys() []string { return s.keys }
