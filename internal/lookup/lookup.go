// Package lookup implements the Lookup Engine: resolving a (locale, flat
// key) request into a decoded value, reconstructing subtrees on demand
// and following symbol-links transitively.
package lookup

import (
	"github.com/shopify/i18ncompact/internal/arena"
	"github.com/shopify/i18ncompact/internal/base"
	"github.com/shopify/i18ncompact/internal/columns"
	"github.com/shopify/i18ncompact/internal/objtable"
	"github.com/shopify/i18ncompact/internal/schema"
	"github.com/shopify/i18ncompact/internal/subtree"
)

// Engine bundles the finalized, read-only structures a lookup needs.
// Every field is immutable once the index is finalized, so an Engine may
// be shared freely across concurrent readers (spec.md §5).
type Engine struct {
	Separator string
	Schema    *schema.Schema
	Columns   *columns.Table
	Arena     []byte
	Objects   objtable.Table
	Subtree   *subtree.Index
}

// Lookup resolves (locale, flatKey) to a decoded value. The returned bool
// is false for "not found" (spec.md §4.7 steps 1-4). err is nil for every
// ordinary miss; it is base.ErrPlaceholderRule (spec.md §9, second open
// question) when the decoded value is an executable-rule slot that a
// cache reload could not re-extract from source — ok is also false in
// that case, since a placeholder is not a usable value, but err tells the
// caller why, rather than leaving it indistinguishable from an absent
// key. Each leaf lookup allocates one fresh copy of any string it
// returns, since callers may mutate it downstream (e.g. interpolation).
func (e *Engine) Lookup(locale base.Locale, flatKey string) (any, bool, error) {
	flatKey = schema.StripLocalePrefix(e.Separator, string(locale), flatKey)
	return e.lookupFlat(locale, flatKey, 0)
}

// maxSymlinkHops bounds symbol-link re-entry so a cyclic link (a
// malformed but not impossible input) cannot spin the lookup forever.
const maxSymlinkHops = 32

func (e *Engine) lookupFlat(locale base.Locale, flatKey string, hops int) (any, bool, error) {
	idx, ok := e.Schema.Lookup(flatKey)
	if !ok {
		return nil, false, nil
	}
	col, ok := e.Columns.Lookup(locale)
	if !ok {
		return nil, false, nil
	}
	ref, present := col.Get(idx)
	if !present {
		return nil, false, nil
	}

	decoded := base.Decode(ref)
	switch decoded.Kind {
	case base.RefSubtree:
		return e.reconstructSubtree(locale, flatKey), true, nil
	case base.RefString:
		s := string(arena.Slice(e.Arena, decoded.StrOffset, decoded.StrLen))
		return s, true, nil
	case base.RefObject:
		obj := e.Objects.Get(decoded.ObjIndex)
		return e.materializeObject(locale, obj, hops)
	default:
		return nil, false, nil
	}
}

// materializeObject turns an object table entry into the Go value a
// caller expects, re-entering the lookup for a symbol link (spec.md §4.7
// step 6).
func (e *Engine) materializeObject(locale base.Locale, obj base.Object, hops int) (any, bool, error) {
	switch obj.Kind {
	case base.ObjArray:
		return obj.Array, true, nil
	case base.ObjSymbolLink:
		if hops >= maxSymlinkHops {
			return nil, false, nil
		}
		return e.lookupFlat(locale, string(obj.SymbolLink), hops+1)
	case base.ObjRule:
		if obj.Rule.Placeholder {
			return nil, false, base.ErrPlaceholderRule
		}
		return obj.Rule, true, nil
	case base.ObjNumber:
		return obj.Number, true, nil
	case base.ObjBool:
		return obj.Bool, true, nil
	case base.ObjNil:
		return nil, true, nil
	case base.ObjLongString:
		return obj.LongString, true, nil
	default:
		return nil, false, nil
	}
}

// ReconstructWholeLocale rebuilds locale's entire nested tree from its
// compacted column, walking from the synthetic "" root the Subtree Child
// Index maintains for exactly this purpose. Used by the Decompactor.
func (e *Engine) ReconstructWholeLocale(locale base.Locale) map[string]any {
	return e.reconstructSubtree(locale, "")
}

// reconstructSubtree rebuilds the nested map rooted at parent for locale,
// recursing into any nested subtree children. Children whose value
// decodes to "not found" (nil column entry) are omitted, per spec.md
// §4.7; a child that decodes to a placeholder rule (base.ErrPlaceholderRule)
// is omitted the same way rather than failing the whole subtree — the
// error is only meaningful to a caller resolving that exact key directly.
func (e *Engine) reconstructSubtree(locale base.Locale, parent string) map[string]any {
	out := make(map[string]any)
	children, ok := e.Subtree.Children(parent)
	if !ok {
		return out
	}
	for _, childKey := range children {
		_, component, _ := schema.Split(e.Separator, childKey)
		if v, ok, _ := e.lookupFlat(locale, childKey, 0); ok {
			out[component] = v
		}
	}
	return out
}
