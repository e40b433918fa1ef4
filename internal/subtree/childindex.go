// Package subtree implements the Subtree Child Index: the map from each
// interior flat key to the ordered sequence of its direct-child flat
// keys, used only for on-demand subtree reconstruction.
package subtree

import (
	"github.com/cockroachdb/swiss"
	"github.com/shopify/i18ncompact/internal/schema"
)

// Index is the frozen parent flat key -> children flat keys map.
type Index struct {
	children *swiss.Map[string, []string]
}

// Build constructs the child index from a finalized schema, splitting
// each flat key on sep into (parent, component) and appending the full
// key to the parent's child list in schema insertion order (spec.md
// §4.5). Children therefore decode deterministically.
func Build(sep string, s *schema.Schema) *Index {
	children := swiss.New[string, []string](s.Len())
	for _, key := range s.Keys() {
		parent, _, ok := schema.Split(sep, key)
		if !ok {
			// A root-level key (no separator) is a child of the
			// synthetic "" root, so whole-locale reconstruction can
			// walk from a single entry point the same way a nested
			// subtree does.
			parent = ""
		}
		list, _ := children.Get(parent)
		children.Put(parent, append(list, key))
	}
	return &Index{children: children}
}

// Children returns the ordered child flat keys of parent, if parent is an
// interior node.
func (idx *Index) Children(parent string) ([]string, bool) {
	return idx.children.Get(parent)
}
