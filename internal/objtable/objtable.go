// Package objtable implements the Object Side Table: an append-only,
// undeduplicated sequence of non-string leaf values (arrays, symbol
// links, executable rules, numbers, booleans, nil spills, and long-string
// spills), addressed by a zero-based index.
package objtable

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/shopify/i18ncompact/internal/base"
)

// Builder accumulates object table entries during compaction.
type Builder struct {
	entries   []base.Object
	finalized bool
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{entries: make([]base.Object, 0, 64)}
}

// Append adds obj to the table and returns its index. The object table is
// not deduplicated: spec.md §4.2 notes non-string values are rare and
// typically distinct.
func (b *Builder) Append(obj base.Object) int {
	if b.finalized {
		panic("objtable: Append called after finalize")
	}
	b.entries = append(b.entries, obj)
	return len(b.entries) - 1
}

// Finalize freezes the table and returns its immutable view.
func (b *Builder) Finalize() Table {
	b.finalized = true
	return Table(slices.Clone(b.entries))
}

// Len reports the number of entries appended so far.
func (b *Builder) Len() int { return len(b.entries) }

// Table is the frozen, read-only object side table.
type Table []base.Object

// Get returns the object at idx. Callers must ensure idx is within
// bounds — the lookup engine only calls Get with indices it decoded from
// a trusted, already-validated packed reference.
func (t Table) Get(idx int) base.Object { return t[idx] }

// Len reports the number of entries in the frozen table.
func (t Table) Len() int { return len(t) }

// Patch overwrites the rule at idx after a cache reload has re-evaluated
// its source file (spec.md §4.9: "patch them back into the object table
// at the recorded positions"). This is the one mutation a frozen Table
// permits, scoped to rule positions recorded in the cache's
// proc-positions map.
func (t Table) Patch(idx int, rule base.Rule) error {
	if idx < 0 || idx >= len(t) {
		return errors.Newf("objtable: patch index %d out of range [0, %d)", idx, len(t))
	}
	if t[idx].Kind != base.ObjRule {
		return errors.Newf("objtable: position %d is not a rule slot", idx)
	}
	t[idx].Rule = rule
	return nil
}
