// Package i18ncompact implements a compacted translation index: a
// columnar, arena-backed representation of a per-locale nested
// translation tree, built for O(1) leaf lookups and cheap whole-process
// sharing, with an optional on-disk cache keyed by a source fingerprint.
//
// The package only specifies the interfaces it consumes from and exposes
// to an external translation framework — reading YAML/PO/whatever
// source format into nested trees is the caller's job (see Loader).
package i18ncompact

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/shopify/i18ncompact/internal/base"
	"github.com/shopify/i18ncompact/internal/cachefile"
	"github.com/shopify/i18ncompact/internal/compact"
	"github.com/shopify/i18ncompact/internal/decompact"
	"github.com/shopify/i18ncompact/internal/lookup"
	"github.com/shopify/i18ncompact/internal/metrics"
	"github.com/shopify/i18ncompact/internal/schema"
	"github.com/shopify/i18ncompact/internal/stats"
)

// Loader is the external framework's half of EagerLoad: it knows how to
// enumerate the source files that make up the translation set, parse
// them into nested trees, and (optionally) re-evaluate any executable
// rules a cache reload can't carry across a process restart.
type Loader interface {
	// SourcePaths returns the ordered list of file paths that determine
	// the cache fingerprint. The order matters: it is part of the
	// fingerprint's input.
	SourcePaths() []string

	// Load reads every locale's nested tree from the source files.
	Load() (map[base.Locale]map[string]any, error)

	// ExtractRules re-evaluates whichever source files can produce
	// executable leaves, keyed by the leaf's flat key. Returning nil
	// skips rule re-extraction entirely — every rule slot that survived
	// a cache hit stays a placeholder until overwritten by a later
	// StoreTranslations or Compact.
	ExtractRules() map[string]base.Rule
}

// state is the Store's entire mutable picture, swapped in wholesale so
// concurrent Lookup calls never take a lock (spec.md §5): a locale is
// either compacted (present in compiled/engine) or pending (present in
// pending as a raw nested tree), never both.
type state struct {
	pending       map[base.Locale]compact.Tree
	compiled      *compact.State
	engine        *lookup.Engine
	procPositions map[int][]cachefile.ProcRef
	sourcePaths   []string
}

func emptyState() *state {
	return &state{pending: make(map[base.Locale]compact.Tree)}
}

// Store is a compacted translation index. The zero value is not usable;
// construct one with New. A *Store is safe for concurrent use: Lookup
// reads a lock-free atomic snapshot, while Compact, StoreTranslations,
// Reload, and EagerLoad serialize on an internal mutex.
type Store struct {
	opts     *Options
	metrics  *metrics.Metrics
	recorder *stats.Recorder
	throttle *cachefile.Throttle

	writeMu sync.Mutex
	cur     atomic.Pointer[state]
}

// New constructs a Store from opts (nil selects every default).
func New(opts *Options) *Store {
	opts = opts.EnsureDefaults()
	s := &Store{
		opts:    opts,
		metrics: metrics.New(),
	}
	if opts.Stats {
		s.recorder = stats.New()
	}
	if opts.SaveInterval > 0 {
		s.throttle = cachefile.NewThrottle(opts.SaveInterval)
	}
	if opts.MetricsRegistry != nil {
		s.metrics.MustRegister(opts.MetricsRegistry)
	}
	s.cur.Store(emptyState())
	return s
}

// Stats returns a snapshot of the diagnostics histograms, accumulated
// over every compaction this Store has run (they are not reset between
// compactions). Returns the zero Summary if Options.Stats was false.
func (s *Store) Stats() stats.Summary {
	return s.recorder.Snapshot()
}

// StatsStringLengthSeries returns a smoothed approximation of the string
// length distribution accumulated over every compaction this Store has
// run, suitable for an asciigraph plot. Returns nil if Options.Stats was
// false.
func (s *Store) StatsStringLengthSeries(buckets int) []float64 {
	return s.recorder.StringLengthSeries(buckets)
}

// cacheOptions builds the persistence-layer options for the current
// Store configuration.
func (s *Store) cacheOptions() cachefile.Options {
	return cachefile.Options{Compression: s.opts.CacheCompression, Throttle: s.throttle}
}

func (s *Store) fingerprint(paths []string) (cachefile.Fingerprint, error) {
	if s.opts.CacheDigest {
		return cachefile.ComputeDigest(paths)
	}
	return cachefile.ComputeMtime(paths)
}

// Compact finalizes every currently loaded locale — both pending (never
// compacted) and, if some locales are already compacted while others
// are pending, every previously-compacted locale too, which this
// decompacts and recompacts alongside the rest so the whole store shares
// one schema (spec.md §4.6's mixed-state rebuild policy). Calling
// Compact with nothing pending and nothing compacted yet is a no-op;
// calling it with nothing pending and everything already compacted is
// also a no-op (idempotence: spec.md §9).
func (s *Store) Compact() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.cur.Load()
	if len(cur.pending) == 0 {
		return nil
	}
	return s.compactLocked(cur.sourcePaths)
}

// EagerLoad loads every source file loader describes and compacts the
// result, unless CachePath is set and the cache is fresh for loader's
// current SourcePaths, in which case the load step is skipped entirely
// and the cached state is installed directly (spec.md §6).
func (s *Store) EagerLoad(loader Loader) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	paths := loader.SourcePaths()
	if s.opts.CachePath != "" {
		fp, err := s.fingerprint(paths)
		if err == nil {
			if result, ok, err := cachefile.Load(s.opts.CachePath, fp); err == nil && ok {
				if extracted := loader.ExtractRules(); extracted != nil {
					if err := cachefile.PatchRules(result.State, result.ProcPositions, extracted); err != nil {
						return errors.Wrap(err, "i18ncompact: patching rules after cache hit")
					}
				}
				next := &state{
					compiled:      result.State,
					pending:       make(map[base.Locale]compact.Tree),
					procPositions: result.ProcPositions,
					sourcePaths:   paths,
				}
				next.engine = engineFor(result.State)
				s.metrics.CacheLoadsTotal.WithLabelValues(string(metrics.ResultHit)).Inc()
				s.cur.Store(next)
				return nil
			}
			s.metrics.CacheLoadsTotal.WithLabelValues(string(metrics.ResultMiss)).Inc()
		}
	}

	trees, err := loader.Load()
	if err != nil {
		return errors.Wrap(err, "i18ncompact: loading source translations")
	}

	cur := s.cur.Load()
	pending := make(map[base.Locale]compact.Tree, len(trees))
	for l, t := range trees {
		pending[l] = compact.Tree(t)
	}
	s.cur.Store(&state{pending: pending, compiled: cur.compiled, engine: cur.engine, sourcePaths: paths})

	return s.compactLocked(paths)
}

// compactLocked does the actual decompact-then-recompact work shared by
// Compact and EagerLoad's cache-miss path, stamping sourcePaths onto the
// resulting state so a later Compact call knows what to fingerprint.
// Callers must already hold writeMu.
func (s *Store) compactLocked(sourcePaths []string) error {
	cur := s.cur.Load()
	trees := make(map[base.Locale]compact.Tree, len(cur.pending))
	for l, t := range cur.pending {
		trees[l] = t
	}
	if cur.compiled != nil {
		// Decompact works against a private clone of the published Columns
		// table: it deletes each decoded locale's column as it goes, and
		// cur.compiled may still be getting read lock-free by a concurrent
		// Lookup call.
		scratch := cur.compiled.Columns.Clone()
		decompacted, err := decompact.Many(cur.engine, scratch, scratch.Locales())
		if err != nil {
			return errors.Wrap(err, "i18ncompact: decompacting mixed-state locales before recompaction")
		}
		for l, t := range decompacted {
			if _, already := trees[l]; !already {
				trees[l] = compact.Tree(t)
			}
		}
	}

	start := time.Now()
	newState, err := compact.Compact(s.opts.Separator, trees, s.recorder)
	if err != nil {
		return errors.Wrap(err, "i18ncompact: compact")
	}
	s.metrics.CompactionDuration.Observe(time.Since(start).Seconds())

	// Record every (locale, flat key) that holds an executable rule, so a
	// saved cache can have those slots re-patched after a reload.
	procPositions := make(map[int][]cachefile.ProcRef)
	for _, l := range newState.Columns.Locales() {
		col, _ := newState.Columns.Lookup(l)
		for i := 0; i < col.Len(); i++ {
			ref, ok := col.Get(i)
			if !ok || !ref.IsObject() || newState.Objects.Get(ref.DecodeObject()).Kind != base.ObjRule {
				continue
			}
			procPositions[ref.DecodeObject()] = append(procPositions[ref.DecodeObject()],
				cachefile.ProcRef{Locale: l, FlatKey: newState.Schema.Key(i)})
		}
	}

	next := &state{compiled: newState, pending: make(map[base.Locale]compact.Tree), procPositions: procPositions, sourcePaths: sourcePaths}
	next.engine = engineFor(newState)
	s.metrics.CompactionsTotal.Inc()
	s.metrics.ArenaBytes.Set(float64(len(newState.Arena)))
	s.metrics.ObjectTableSize.Set(float64(newState.Objects.Len()))
	s.metrics.SchemaSize.Set(float64(newState.Schema.Len()))

	s.saveCache(next)
	s.cur.Store(next)
	return nil
}

// saveCache persists next to CachePath if configured, using next's own
// sourcePaths to compute the fingerprint. A save failure never
// propagates (spec.md §4.9); it only counts against CacheSaveFailures.
func (s *Store) saveCache(next *state) {
	if s.opts.CachePath == "" || len(next.sourcePaths) == 0 {
		return
	}
	fp, err := s.fingerprint(next.sourcePaths)
	if err != nil {
		s.metrics.CacheSaveFailures.Inc()
		return
	}
	if !cachefile.Save(s.opts.CachePath, fp, next.compiled, next.procPositions, s.cacheOptions()) {
		s.metrics.CacheSaveFailures.Inc()
	}
}

// StoreOption adjusts a single StoreTranslations call.
type StoreOption func(*storeConfig)

type storeConfig struct {
	separator string
}

// Separator asserts the flat key separator the caller built data with.
// The separator is a build-time input, not a schema property (spec.md
// §9): if it doesn't match the Store's configured separator,
// StoreTranslations rejects the call instead of silently compacting
// keys that would never resolve through Lookup.
func Separator(sep string) StoreOption {
	return func(c *storeConfig) { c.separator = sep }
}

// StoreTranslations merges data into locale's translations. If locale is
// currently compacted it is first decompacted to a nested tree (other
// locales, compacted or pending, are untouched); the locale remains
// pending — not automatically recompacted — until the next Compact call
// (spec.md §4.8, §6). options may include Separator, which is validated
// against the Store's configured separator rather than applied as an
// override (spec.md §9: "implementations should reject a mismatch").
func (s *Store) StoreTranslations(locale base.Locale, data map[string]any, opts ...StoreOption) error {
	var cfg storeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.separator != "" {
		if err := schema.CheckSeparator(s.opts.Separator, cfg.separator); err != nil {
			return err
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.cur.Load()
	pending := make(map[base.Locale]compact.Tree, len(cur.pending)+1)
	for l, t := range cur.pending {
		pending[l] = t
	}

	existing := pending[locale]
	newCompiled, newEngine := cur.compiled, cur.engine
	if cur.compiled != nil {
		if _, ok := cur.compiled.Columns.Lookup(locale); ok {
			// Decompact into a private clone: cur.compiled.Columns is
			// published and may still be read lock-free by a concurrent
			// Lookup, so it must not be mutated (Delete) in place. The
			// clone becomes the new published Columns table, with locale's
			// column gone — it now lives only in pending, never both.
			scratch := cur.compiled.Columns.Clone()
			existing = compact.Tree(decompact.One(cur.engine, scratch, locale))
			compiledCopy := *cur.compiled
			compiledCopy.Columns = scratch
			newCompiled = &compiledCopy
			newEngine = engineFor(newCompiled)
		}
	}
	pending[locale] = compact.MergeInto(existing, compact.Tree(data))

	s.cur.Store(&state{
		pending:       pending,
		compiled:      newCompiled,
		engine:        newEngine,
		procPositions: cur.procPositions,
		sourcePaths:   cur.sourcePaths,
	})
	return nil
}

// Reload drops every piece of compacted and pending state, returning the
// Store to its pre-EagerLoad condition (spec.md §6).
func (s *Store) Reload() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.cur.Store(emptyState())
}

// LookupOption adjusts a single Lookup call.
type LookupOption func(*lookupConfig)

type lookupConfig struct {
	scope string
}

// Scope prefixes key with scope+separator before resolving it, the way
// a translation call's :scope option narrows a lookup to a subtree
// without the caller spelling out the full flat key.
func Scope(scope string) LookupOption {
	return func(c *lookupConfig) { c.scope = scope }
}

// Lookup resolves key (optionally narrowed by Scope) against locale's
// current translations, whether locale is compacted or still a pending
// nested tree. The bool result is false for "not found". err is nil for
// every ordinary miss; it is base.ErrPlaceholderRule when key resolves to
// an executable-rule slot a cache reload could not re-extract from
// source (spec.md §9, second open question) — callers that expect a
// callable value should check with errors.Is rather than treat a nil
// result as an ordinary miss.
func (s *Store) Lookup(locale base.Locale, key string, opts ...LookupOption) (any, bool, error) {
	var cfg lookupConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	flatKey := key
	if cfg.scope != "" {
		flatKey = schema.Join(s.opts.Separator, cfg.scope, key)
	}

	cur := s.cur.Load()
	if cur.engine != nil {
		if _, ok := cur.compiled.Columns.Lookup(locale); ok {
			return cur.engine.Lookup(locale, flatKey)
		}
	}
	if tree, ok := cur.pending[locale]; ok {
		v, ok := lookupNested(tree, s.opts.Separator, flatKey)
		return v, ok, nil
	}
	return nil, false, nil
}

// lookupNested walks a not-yet-compacted locale's raw tree one separator
// component at a time, so StoreTranslations doesn't have to force a
// recompaction just to stay readable. Unlike the Lookup Engine it does not
// strip a leading "<locale><sep>" prefix, and a subtree comes back as the
// raw nested map rather than a reconstructed one.
func lookupNested(tree compact.Tree, sep, flatKey string) (any, bool) {
	node := any(tree)
	remaining := flatKey
	for {
		rest, component, hasMore := splitFirst(sep, remaining)
		m, ok := asTree(node)
		if !ok {
			return nil, false
		}
		v, ok := m[component]
		if !ok {
			return nil, false
		}
		if !hasMore {
			return v, true
		}
		node = v
		remaining = rest
	}
}

func asTree(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case compact.Tree:
		return map[string]any(t), true
	case map[string]any:
		return t, true
	default:
		return nil, false
	}
}

// splitFirst peels the first path component off flatKey, returning it
// plus whatever follows and whether anything followed.
func splitFirst(sep, flatKey string) (rest, component string, hasMore bool) {
	for i := 0; i+len(sep) <= len(flatKey); i++ {
		if flatKey[i:i+len(sep)] == sep {
			return flatKey[i+len(sep):], flatKey[:i], true
		}
	}
	return "", flatKey, false
}

func engineFor(st *compact.State) *lookup.Engine {
	return &lookup.Engine{
		Separator: st.Separator,
		Schema:    st.Schema,
		Columns:   st.Columns,
		Arena:     st.Arena,
		Objects:   st.Objects,
		Subtree:   st.Subtree,
	}
}

// SaveInterval reports the Store's cache-save throttle interval after
// defaulting (a zero Options.SaveInterval reads back as 1s).
func (s *Store) SaveInterval() time.Duration {
	return s.opts.SaveInterval
}

// Description summarizes a Store's current state for diagnostic tools
// (cmd/i18ninspect); it has no bearing on Lookup or Compact behavior.
type Description struct {
	CompactedLocales []base.Locale
	PendingLocales   []base.Locale
	SchemaColumns    int
	ArenaBytes       int
	ObjectTableSize  int
}

// Describe returns a snapshot of the Store's current state.
func (s *Store) Describe() Description {
	cur := s.cur.Load()
	var d Description
	for l := range cur.pending {
		d.PendingLocales = append(d.PendingLocales, l)
	}
	sort.Slice(d.PendingLocales, func(i, j int) bool { return d.PendingLocales[i] < d.PendingLocales[j] })
	if cur.compiled != nil {
		d.CompactedLocales = cur.compiled.Columns.Locales()
		sort.Slice(d.CompactedLocales, func(i, j int) bool { return d.CompactedLocales[i] < d.CompactedLocales[j] })
		d.SchemaColumns = cur.compiled.Schema.Len()
		d.ArenaBytes = len(cur.compiled.Arena)
		d.ObjectTableSize = cur.compiled.Objects.Len()
	}
	return d
}
