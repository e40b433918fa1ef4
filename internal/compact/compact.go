// Package compact implements the Compactor: the depth-first flattening of
// a nested value tree (per locale) into the Key Schema, Value Columns,
// String Arena, and Object Side Table, followed by construction of the
// Subtree Child Index.
//
// The strategy here mirrors how the teacher's compaction layer dispatches
// on value kind per key-value pair (small vs. oversize vs. merge-key in
// value_separation.go's Add) rather than building one monolithic
// type switch inline: classifyLeaf below is that same kind of dispatch,
// specialized to the seven leaf kinds this spec's Object Side Table
// supports.
package compact

import (
	"sort"

	"github.com/shopify/i18ncompact/internal/arena"
	"github.com/shopify/i18ncompact/internal/base"
	"github.com/shopify/i18ncompact/internal/columns"
	"github.com/shopify/i18ncompact/internal/objtable"
	"github.com/shopify/i18ncompact/internal/schema"
	"github.com/shopify/i18ncompact/internal/stats"
	"github.com/shopify/i18ncompact/internal/subtree"
)

// Tree is one locale's nested value tree: leaves are string, bool,
// float64 (or another Go numeric kind, normalized on the way in),
// base.SymbolLink, base.Rule, []any, or nil; interior nodes are
// map[string]any.
type Tree map[string]any

// State is the complete frozen output of a compaction pass: Schema,
// Columns, Arena, Objects, and Subtree together form the structures
// spec.md §2's data-flow diagram shows arriving from the Compactor.
type State struct {
	Separator string
	Schema    *schema.Schema
	Columns   *columns.Table
	Arena     []byte
	Objects   objtable.Table
	Subtree   *subtree.Index
}

// Compact flattens every locale in trees into a single new State. It
// always performs a full, from-scratch compaction over exactly the
// locales given — the decision of *which* locales to pass (all
// currently-known ones, per the rebuild policy in spec.md §4.6) belongs
// to the caller, not to this package.
func Compact(sep string, trees map[base.Locale]Tree, rec *stats.Recorder) (*State, error) {
	sb := schema.New()
	ab := arena.New()
	ob := objtable.New()
	ct := columns.NewTable()

	for _, locale := range sortedLocales(trees) {
		col := ct.Column(locale, sb.Len())
		if err := compactNode(sep, "", trees[locale], sb, ab, ob, col, rec); err != nil {
			return nil, err
		}
	}

	finalSchema := sb.Finalize()
	for _, locale := range sortedLocales(trees) {
		if col, ok := ct.Lookup(locale); ok {
			col.Finalize()
		}
	}
	arenaBytes := ab.Finalize()
	objTable := ob.Finalize()
	subtreeIdx := subtree.Build(sep, finalSchema)

	state := &State{
		Separator: sep,
		Schema:    finalSchema,
		Columns:   ct,
		Arena:     arenaBytes,
		Objects:   objTable,
		Subtree:   subtreeIdx,
	}
	if err := checkInvariant2(state); err != nil {
		return nil, base.AssertOrError(err)
	}
	return state, nil
}

// Recombine builds a State directly from already-built components,
// skipping the tree-walk: used by the persistence layer to reassemble a
// State from a loaded cache file, where the schema/columns/arena/objects
// were deserialized rather than freshly compacted.
func Recombine(
	sep string, sch *schema.Schema, cols *columns.Table, arenaBytes []byte, objects objtable.Table,
) (*State, error) {
	state := &State{
		Separator: sep,
		Schema:    sch,
		Columns:   cols,
		Arena:     arenaBytes,
		Objects:   objects,
		Subtree:   subtree.Build(sep, sch),
	}
	if err := checkInvariant2(state); err != nil {
		return nil, base.AssertOrError(err)
	}
	return state, nil
}

// MergeInto deep-merges src into dst, recursing into nested maps present
// in both and overwriting any leaf, and returns dst. It is the
// StoreTranslations merge semantics the root package needs once a locale
// has been decompacted back to a nested tree (spec.md §4.8, §6
// store_translations).
func MergeInto(dst, src Tree) Tree {
	if dst == nil {
		dst = make(Tree, len(src))
	}
	for k, v := range src {
		sv, isMap := v.(map[string]any)
		if t, ok := v.(Tree); ok {
			sv, isMap = map[string]any(t), true
		}
		if isMap {
			if dv, ok := dst[k].(map[string]any); ok {
				MergeInto(Tree(dv), Tree(sv))
				continue
			}
			if dv, ok := dst[k].(Tree); ok {
				MergeInto(dv, Tree(sv))
				continue
			}
		}
		dst[k] = v
	}
	return dst
}

func sortedLocales(trees map[base.Locale]Tree) []base.Locale {
	out := make([]base.Locale, 0, len(trees))
	for l := range trees {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// compactNode walks one map level (either the root of a locale's tree or
// a nested map reached via recursion), interning each key's flat path and
// classifying its value.
func compactNode(
	sep, prefix string, node Tree, sb *schema.Builder, ab *arena.Builder, ob *objtable.Builder, col *columns.Column, rec *stats.Recorder,
) error {
	keys := make([]string, 0, len(node))
	for k := range node {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rec.ObserveFanout(len(keys))

	for _, k := range keys {
		flatKey := schema.Join(sep, prefix, k)
		idx := sb.Intern(flatKey)
		if err := classifyLeaf(sep, flatKey, idx, node[k], sb, ab, ob, col, rec); err != nil {
			return err
		}
	}
	return nil
}

// classifyLeaf implements spec.md §4.6 step 3's dispatch: nested map ->
// sentinel and recurse; short string -> arena; long string/array/link/
// rule/number/bool/nil -> object table.
func classifyLeaf(
	sep, flatKey string, idx int, v any, sb *schema.Builder, ab *arena.Builder, ob *objtable.Builder, col *columns.Column, rec *stats.Recorder,
) error {
	switch val := v.(type) {
	case Tree:
		col.Set(idx, base.SubtreeSentinel)
		return compactNode(sep, flatKey, val, sb, ab, ob, col, rec)
	case map[string]any:
		col.Set(idx, base.SubtreeSentinel)
		return compactNode(sep, flatKey, Tree(val), sb, ab, ob, col, rec)
	case string:
		return classifyString(val, idx, ab, ob, col, rec)
	case base.SymbolLink:
		objIdx := ob.Append(base.Object{Kind: base.ObjSymbolLink, SymbolLink: val})
		col.Set(idx, base.PackObject(objIdx))
	case base.Rule:
		objIdx := ob.Append(base.Object{Kind: base.ObjRule, Rule: val})
		col.Set(idx, base.PackObject(objIdx))
	case []any:
		objIdx := ob.Append(base.Object{Kind: base.ObjArray, Array: val})
		col.Set(idx, base.PackObject(objIdx))
	case bool:
		objIdx := ob.Append(base.Object{Kind: base.ObjBool, Bool: val})
		col.Set(idx, base.PackObject(objIdx))
	case nil:
		objIdx := ob.Append(base.Object{Kind: base.ObjNil})
		col.Set(idx, base.PackObject(objIdx))
	default:
		if n, ok := normalizeNumber(v); ok {
			objIdx := ob.Append(base.Object{Kind: base.ObjNumber, Number: n})
			col.Set(idx, base.PackObject(objIdx))
			return nil
		}
		return base.AssertionFailedf("compact: unsupported leaf kind %T at %q", v, flatKey)
	}
	return nil
}

func classifyString(s string, idx int, ab *arena.Builder, ob *objtable.Builder, col *columns.Column, rec *stats.Recorder) error {
	enc := detectEncoding(s)
	data := []byte(s)
	rec.ObserveString(len(data))
	if len(data) <= base.MaxStringLength {
		ref, err := ab.Append(data, enc)
		if err != nil {
			return err
		}
		col.Set(idx, ref)
		return nil
	}
	objIdx := ob.Append(base.Object{Kind: base.ObjLongString, LongString: s, LongStringEnc: enc})
	col.Set(idx, base.PackObject(objIdx))
	return nil
}

// checkInvariant2 verifies spec.md invariant 2: no schema key with a
// descendant holds a non-sentinel leaf value in any locale. A violation
// means two locales disagree about whether a flat key is a leaf or an
// interior node, which the Compactor cannot silently reconcile.
func checkInvariant2(state *State) error {
	for idx := 0; idx < state.Schema.Len(); idx++ {
		key := state.Schema.Key(idx)
		if _, hasChildren := state.Subtree.Children(key); !hasChildren {
			continue
		}
		for _, locale := range state.Columns.Locales() {
			col, _ := state.Columns.Lookup(locale)
			ref, present := col.Get(idx)
			if present && ref != base.SubtreeSentinel {
				return base.AssertionFailedf(
					"compact: %q is a leaf for locale %q but an interior node for another locale", key, locale)
			}
		}
	}
	return nil
}
