// Package decompact implements the Decompactor: reverting a single
// locale's compacted value column back into a nested tree so the
// external framework can mutate it, without disturbing any other locale
// (spec.md §4.8).
package decompact

import (
	"golang.org/x/sync/errgroup"

	"github.com/shopify/i18ncompact/internal/base"
	"github.com/shopify/i18ncompact/internal/columns"
	"github.com/shopify/i18ncompact/internal/lookup"
)

// One decodes locale's entire compacted tree into a nested
// map[string]any and removes its column from cols. Other locales'
// columns are untouched (spec.md §4.8: "arena, schema, object table, and
// other locales remain intact").
func One(e *lookup.Engine, cols *columns.Table, locale base.Locale) map[string]any {
	tree := e.ReconstructWholeLocale(locale)
	cols.Delete(locale)
	return tree
}

// Many decompacts every locale in locales concurrently: each decode only
// reads the engine's immutable shared state (schema, arena, object table,
// subtree index) into a fresh per-locale map, so the reads can run on
// separate goroutines with no locking; only the final column deletions
// are serialized back on the caller's goroutine (spec.md §5's
// "cheap to parallelize because inputs are frozen").
func Many(e *lookup.Engine, cols *columns.Table, locales []base.Locale) (map[base.Locale]map[string]any, error) {
	out := make(map[base.Locale]map[string]any, len(locales))
	results := make([]map[string]any, len(locales))

	var g errgroup.Group
	for i, locale := range locales {
		i, locale := i, locale
		g.Go(func() error {
			results[i] = e.ReconstructWholeLocale(locale)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, locale := range locales {
		out[locale] = results[i]
		cols.Delete(locale)
	}
	return out, nil
}
