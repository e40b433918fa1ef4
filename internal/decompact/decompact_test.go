package decompact_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shopify/i18ncompact/internal/base"
	"github.com/shopify/i18ncompact/internal/compact"
	"github.com/shopify/i18ncompact/internal/decompact"
	"github.com/shopify/i18ncompact/internal/lookup"
)

func compactedEngine(t *testing.T, trees map[base.Locale]compact.Tree) (*lookup.Engine, *compact.State) {
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
	}, st
}

func TestOneDecompactsAndDeletesLocale(t *testing.T) {
	e, st := compactedEngine(t, map[base.Locale]compact.Tree{
		"en": {"greeting": "hi", "menu": compact.Tree{"file": "File"}},
		"fr": {"greeting": "salut"},
	})

	tree := decompact.One(e, st.Columns, "en")
	require.Equal(t, "hi", tree["greeting"])
	require.Equal(t, map[string]any{"file": "File"}, tree["menu"])

	_, ok := st.Columns.Lookup("en")
	require.False(t, ok, "decompacted locale's column must be removed")

	_, ok = st.Columns.Lookup("fr")
	require.True(t, ok, "other locales must be untouched")
}

func TestManyDecompactsAllLocalesConcurrently(t *testing.T) {
	e, st := compactedEngine(t, map[base.Locale]compact.Tree{
		"en": {"greeting": "hi"},
		"fr": {"greeting": "salut"},
		"de": {"greeting": "hallo"},
	})

	out, err := decompact.Many(e, st.Columns, []base.Locale{"en", "fr", "de"})
	require.NoError(t, err)
	require.Equal(t, "hi", out["en"]["greeting"])
	require.Equal(t, "salut", out["fr"]["greeting"])
	require.Equal(t, "hallo", out["de"]["greeting"])

	require.Equal(t, 0, st.Columns.Len(), "all decompacted locales must be deleted from cols")
}

func TestManyOnCloneLeavesOriginalIntact(t *testing.T) {
	e, st := compactedEngine(t, map[base.Locale]compact.Tree{
		"en": {"a": "1"},
		"fr": {"a": "2"},
	})

	clone := st.Columns.Clone()
	_, err := decompact.Many(e, clone, []base.Locale{"en"})
	require.NoError(t, err)

	_, ok := clone.Lookup("en")
	require.False(t, ok)
	_, ok = st.Columns.Lookup("en")
	require.True(t, ok, "cloning before decompaction must protect the published table")
}
