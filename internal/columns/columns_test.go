package columns

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shopify/i18ncompact/internal/base"
)

func TestColumnSetGetAndGrow(t *testing.T) {
	c := NewColumn(2)
	c.Set(0, base.PackedRef(42))
	ref, ok := c.Get(0)
	require.True(t, ok)
	require.Equal(t, base.PackedRef(42), ref)

	_, ok = c.Get(1)
	require.False(t, ok, "unset column position is absent")

	c.Set(5, base.PackedRef(7))
	require.Equal(t, 6, c.Len())
	ref, ok = c.Get(5)
	require.True(t, ok)
	require.Equal(t, base.PackedRef(7), ref)
}

func TestTableLookupDeleteAndClone(t *testing.T) {
	tbl := NewTable()
	col := tbl.Column(base.Locale("en"), 1)
	col.Set(0, base.PackedRef(1))
	col.Finalize()

	_, ok := tbl.Lookup(base.Locale("en"))
	require.True(t, ok)
	require.ElementsMatch(t, []base.Locale{"en"}, tbl.Locales())

	clone := tbl.Clone()
	clone.Delete(base.Locale("en"))
	_, ok = clone.Lookup(base.Locale("en"))
	require.False(t, ok, "deleting from a clone must not affect the original")

	_, ok = tbl.Lookup(base.Locale("en"))
	require.True(t, ok, "original table must be untouched by the clone's mutation")

	tbl.Delete(base.Locale("en"))
	require.Equal(t, 0, tbl.Len())
}
