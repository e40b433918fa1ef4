package cachefile

import (
	"bytes"
	"encoding/gob"

	"github.com/shopify/i18ncompact/internal/base"
	"github.com/shopify/i18ncompact/internal/columns"
	"github.com/shopify/i18ncompact/internal/objtable"
	"github.com/shopify/i18ncompact/internal/schema"
	"github.com/shopify/i18ncompact/internal/subtree"
)

func init() {
	// Array elements are stored as interface{}; gob must know every
	// concrete type that can appear in one so it can round-trip arrays of
	// mixed leaf kinds (spec.md §4.6: "Arrays ... are stored as-is").
	gob.Register([]any{})
	gob.Register(map[string]any{})
	gob.Register("")
	gob.Register(float64(0))
	gob.Register(false)
}

// ProcRef names one (locale, flat key) pair that referenced an executable
// rule at save time, so a reload can re-patch the object table position
// after re-evaluating the source that produces it (spec.md §4.9 field 9,
// §9 "Executable rules").
type ProcRef struct {
	Locale  base.Locale
	FlatKey string
}

// schemaDTO is the wire form of *schema.Schema: just the ordered key
// list, since column indices are implied by slice position.
type schemaDTO struct {
	Keys []string
}

func encodeSchema(s *schema.Schema) ([]byte, error) {
	return gobEncode(schemaDTO{Keys: s.Keys()})
}

func decodeSchema(buf []byte) (*schema.Schema, error) {
	var dto schemaDTO
	if err := gobDecode(buf, &dto); err != nil {
		return nil, err
	}
	b := schema.New()
	for _, k := range dto.Keys {
		b.Intern(k)
	}
	return b.Finalize(), nil
}

// columnsDTO is the wire form of *columns.Table: per locale, a dense
// []base.PackedRef with a parallel []bool marking which entries are
// present (columns.Table does not expose its internal sparse
// representation directly, so the codec rebuilds it through the public
// Get/Set API).
type columnsDTO struct {
	Locales []base.Locale
	Refs    [][]base.PackedRef
	Present [][]bool
}

func encodeColumns(ct *columns.Table) ([]byte, error) {
	locales := ct.Locales()
	dto := columnsDTO{Locales: locales}
	for _, l := range locales {
		col, _ := ct.Lookup(l)
		refs := make([]base.PackedRef, col.Len())
		present := make([]bool, col.Len())
		for i := 0; i < col.Len(); i++ {
			ref, ok := col.Get(i)
			refs[i], present[i] = ref, ok
		}
		dto.Refs = append(dto.Refs, refs)
		dto.Present = append(dto.Present, present)
	}
	return gobEncode(dto)
}

func decodeColumns(buf []byte) (*columns.Table, error) {
	var dto columnsDTO
	if err := gobDecode(buf, &dto); err != nil {
		return nil, err
	}
	ct := columns.NewTable()
	for li, l := range dto.Locales {
		col := ct.Column(l, len(dto.Refs[li]))
		for i, present := range dto.Present[li] {
			if present {
				col.Set(i, dto.Refs[li][i])
			}
		}
		col.Finalize()
	}
	return ct, nil
}

// objectDTO is the wire form of one base.Object. It has no field for a
// rule's payload: a rule entry is written with only its Kind and decodes
// back as a placeholder, and positions that held a real rule are recorded
// in the proc-positions map built alongside this section (spec.md §4.9
// field 7 and 9).
type objectDTO struct {
	Kind          base.ObjectKind
	Array         []any
	SymbolLink    base.SymbolLink
	Number        float64
	Bool          bool
	LongString    string
	LongStringEnc base.EncodingID
}

// encodeObjects serializes obj, replacing rules with placeholders and
// returning the proc-positions map recording where real rules lived,
// keyed by object table index.
func encodeObjects(obj objtable.Table, refs func(objIndex int) []ProcRef) ([]byte, map[int][]ProcRef, error) {
	dtos := make([]objectDTO, obj.Len())
	procPositions := make(map[int][]ProcRef)
	for i := 0; i < obj.Len(); i++ {
		o := obj.Get(i)
		dtos[i] = objectDTO{
			Kind:          o.Kind,
			Array:         o.Array,
			SymbolLink:    o.SymbolLink,
			Number:        o.Number,
			Bool:          o.Bool,
			LongString:    o.LongString,
			LongStringEnc: o.LongStringEnc,
		}
		if o.Kind == base.ObjRule {
			if rs := refs(i); len(rs) > 0 {
				procPositions[i] = rs
			}
		}
	}
	payload, err := gobEncode(dtos)
	if err != nil {
		return nil, nil, err
	}
	return payload, procPositions, nil
}

func decodeObjects(buf []byte) (objtable.Table, error) {
	var dtos []objectDTO
	if err := gobDecode(buf, &dtos); err != nil {
		return nil, err
	}
	b := objtable.New()
	for _, d := range dtos {
		o := base.Object{
			Kind:          d.Kind,
			Array:         d.Array,
			SymbolLink:    d.SymbolLink,
			Number:        d.Number,
			Bool:          d.Bool,
			LongString:    d.LongString,
			LongStringEnc: d.LongStringEnc,
		}
		if o.Kind == base.ObjRule {
			o.Rule = base.Rule{Placeholder: true}
		}
		b.Append(o)
	}
	return b.Finalize(), nil
}

func encodeProcPositions(m map[int][]ProcRef) ([]byte, error) {
	return gobEncode(m)
}

func decodeProcPositions(buf []byte) (map[int][]ProcRef, error) {
	var m map[int][]ProcRef
	if err := gobDecode(buf, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// subtreeDTO captures the child index as a plain map, rebuilt on load by
// reusing subtree.Build over the already-decoded schema rather than
// re-deriving it from scratch on disk — the map is still persisted
// because reconstructing the child index strictly from the schema is
// cheap, but keeping the on-disk frame self-describing (spec.md §4.9
// field 8 names it as its own section) means a future reader doesn't
// have to know the derivation rule.
func encodeSubtree(sep string, s *schema.Schema) ([]byte, error) {
	idx := subtree.Build(sep, s)
	out := make(map[string][]string)
	for _, k := range append(s.Keys(), "") {
		if children, ok := idx.Children(k); ok {
			out[k] = children
		}
	}
	return gobEncode(out)
}

func gobEncode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gobDecode(buf []byte, v any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = corruptSection("gob")
		}
	}()
	return gob.NewDecoder(bytes.NewReader(buf)).Decode(v)
}
