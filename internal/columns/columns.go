// Package columns implements the Value Columns: one packed-reference
// sequence per locale, indexed by schema column index.
package columns

import (
	"slices"

	"github.com/shopify/i18ncompact/internal/base"
)

// entry is a (present, ref) pair so that an absent column position is
// distinguishable from a present PackedRef of zero, which is a valid
// zero-length string reference.
type entry struct {
	present bool
	ref     base.PackedRef
}

// Column is one locale's dense value sequence, indexed by schema column
// index. Sparse locales are permitted: trailing or interior absent
// entries are simply never written (spec.md §4.4).
type Column struct {
	entries []entry
}

// NewColumn returns a Column sized for n schema columns, all absent.
func NewColumn(n int) *Column {
	return &Column{entries: make([]entry, n)}
}

// Set assigns ref at idx, growing the column if idx is beyond its current
// length (a schema that grows mid-compaction, e.g. a new nested key seen
// only for this locale).
func (c *Column) Set(idx int, ref base.PackedRef) {
	if idx >= len(c.entries) {
		grown := make([]entry, idx+1)
		copy(grown, c.entries)
		c.entries = grown
	}
	c.entries[idx] = entry{present: true, ref: ref}
}

// Get returns the packed reference at idx and whether it is present. A
// missing index is equivalent to absent (nil), per spec.md §3.
func (c *Column) Get(idx int) (base.PackedRef, bool) {
	if idx < 0 || idx >= len(c.entries) {
		return 0, false
	}
	e := c.entries[idx]
	return e.ref, e.present
}

// Len reports the column's current length (may be less than the schema's
// total column count for a sparse locale).
func (c *Column) Len() int { return len(c.entries) }

// Finalize freezes the column's backing slice.
func (c *Column) Finalize() {
	c.entries = slices.Clone(c.entries)
}

// Table is the frozen map of locale to column, the "only mutable root"
// described in spec.md §5: it is replaced wholesale on decompaction or
// reload, never mutated entry-by-entry once finalized.
type Table struct {
	byLocale map[base.Locale]*Column
}

// NewTable returns an empty column table.
func NewTable() *Table {
	return &Table{byLocale: make(map[base.Locale]*Column)}
}

// Column returns the column for locale, creating an empty one sized for n
// schema columns if it does not exist yet.
func (t *Table) Column(locale base.Locale, n int) *Column {
	c, ok := t.byLocale[locale]
	if !ok {
		c = NewColumn(n)
		t.byLocale[locale] = c
	}
	return c
}

// Lookup returns the column for locale, if it has one.
func (t *Table) Lookup(locale base.Locale) (*Column, bool) {
	c, ok := t.byLocale[locale]
	return c, ok
}

// Delete removes locale's column (used by the Decompactor: spec.md §4.8
// removes the value column and compacted flag for a single locale without
// disturbing any other locale).
func (t *Table) Delete(locale base.Locale) {
	delete(t.byLocale, locale)
}

// Clone returns a shallow copy of t: a fresh outer map referencing the
// same, already-immutable *Column values. Callers that need to delete a
// locale from a table that may still be read concurrently (e.g. the
// Decompactor operating on a published, shared table) must Clone first
// — Delete is not safe to call on a table any other goroutine might be
// reading.
func (t *Table) Clone() *Table {
	out := &Table{byLocale: make(map[base.Locale]*Column, len(t.byLocale))}
	for l, c := range t.byLocale {
		out.byLocale[l] = c
	}
	return out
}

// Locales returns the set of locales currently holding a compacted
// column.
func (t *Table) Locales() []base.Locale {
	out := make([]base.Locale, 0, len(t.byLocale))
	for l := range t.byLocale {
		out = append(out, l)
	}
	return out
}

// Len reports the number of compacted locales.
func (t *Table) Len() int { return len(t.byLocale) }
