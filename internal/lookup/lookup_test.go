package lookup_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shopify/i18ncompact/internal/base"
	"github.com/shopify/i18ncompact/internal/compact"
	"github.com/shopify/i18ncompact/internal/lookup"
)

func engineFor(t *testing.T, trees map[base.Locale]compact.Tree) *lookup.Engine {
	t.Helper()
	st, err := compact.Compact(".", trees, nil)
	require.NoError(t, err)
	return &lookup.Engine{
		Separator: st.Separator,
		Schema:    st.Schema,
		Columns:   st.Columns,
		Arena:     st.Arena,
		Objects:   st.Objects,
		Subtree:   st.Subtree,
	}
}

func TestLookupStringLeaf(t *testing.T) {
	e := engineFor(t, map[base.Locale]compact.Tree{
		"en": {"greeting": "hello"},
	})
	v, ok, err := e.Lookup("en", "greeting")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hello", v)
}

func TestLookupMissingKey(t *testing.T) {
	e := engineFor(t, map[base.Locale]compact.Tree{"en": {"a": "1"}})
	_, ok, err := e.Lookup("en", "b")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLookupMissingLocale(t *testing.T) {
	e := engineFor(t, map[base.Locale]compact.Tree{"en": {"a": "1"}})
	_, ok, err := e.Lookup("fr", "a")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLookupReconstructsSubtree(t *testing.T) {
	e := engineFor(t, map[base.Locale]compact.Tree{
		"en": {"menu": compact.Tree{"file": "File", "edit": "Edit"}},
	})
	v, ok, err := e.Lookup("en", "menu")
	require.NoError(t, err)
	require.True(t, ok)
	m, ok := v.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "File", m["file"])
	require.Equal(t, "Edit", m["edit"])
}

func TestLookupFollowsSymbolLink(t *testing.T) {
	e := engineFor(t, map[base.Locale]compact.Tree{
		"en": {
			"canonical": "hello",
			"alias":     base.SymbolLink("canonical"),
		},
	})
	v, ok, err := e.Lookup("en", "alias")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hello", v)
}

func TestLookupStripsLocalePrefix(t *testing.T) {
	e := engineFor(t, map[base.Locale]compact.Tree{"en": {"greeting": "hello"}})
	v, ok, err := e.Lookup("en", "en.greeting")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hello", v)
}

func TestLookupArrayAndScalarLeaves(t *testing.T) {
	e := engineFor(t, map[base.Locale]compact.Tree{
		"en": {
			"list":   []any{"a", "b"},
			"count":  3.0,
			"active": true,
			"empty":  nil,
		},
	})
	v, ok, err := e.Lookup("en", "list")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []any{"a", "b"}, v)

	v, ok, err = e.Lookup("en", "count")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 3.0, v)

	v, ok, err = e.Lookup("en", "active")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, true, v)

	v, ok, err = e.Lookup("en", "empty")
	require.NoError(t, err)
	require.True(t, ok)
	require.Nil(t, v)
}

func TestLookupPlaceholderRuleSurfacesTypedError(t *testing.T) {
	e := engineFor(t, map[base.Locale]compact.Tree{
		"en": {"proc": base.Rule{Placeholder: true}},
	})
	v, ok, err := e.Lookup("en", "proc")
	require.Nil(t, v)
	require.False(t, ok)
	require.ErrorIs(t, err, base.ErrPlaceholderRule)
}

func TestLookupPlaceholderRuleInsideSubtreeIsOmittedNotFatal(t *testing.T) {
	e := engineFor(t, map[base.Locale]compact.Tree{
		"en": {"menu": compact.Tree{
			"title": "Menu",
			"proc":  base.Rule{Placeholder: true},
		}},
	})
	v, ok, err := e.Lookup("en", "menu")
	require.NoError(t, err)
	require.True(t, ok)
	m := v.(map[string]any)
	require.Equal(t, "Menu", m["title"])
	_, present := m["proc"]
	require.False(t, present, "a placeholder rule inside a subtree is omitted, not fatal")
}

func TestReconstructWholeLocale(t *testing.T) {
	e := engineFor(t, map[base.Locale]compact.Tree{
		"en": {
			"greeting": "hi",
			"menu":     compact.Tree{"file": "File"},
		},
	})
	whole := e.ReconstructWholeLocale("en")
	require.Equal(t, "hi", whole["greeting"])
	require.Equal(t, map[string]any{"file": "File"}, whole["menu"])
}
