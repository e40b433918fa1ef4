// Package metrics exposes the Prometheus collectors the index updates on
// compaction and cache load/save. They are registered only when a caller
// passes a registry; without one the collectors are still updated but
// never exported (SPEC_FULL.md §4.11).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every collector the index instance owns.
type Metrics struct {
	CompactionsTotal     prometheus.Counter
	CompactionDuration   prometheus.Histogram
	CacheLoadsTotal      *prometheus.CounterVec
	CacheSaveFailures    prometheus.Counter
	ArenaBytes           prometheus.Gauge
	ObjectTableSize      prometheus.Gauge
	SchemaSize           prometheus.Gauge
}

// CacheLoadResult labels the cache_loads_total counter vector.
type CacheLoadResult string

const (
	ResultHit     CacheLoadResult = "hit"
	ResultMiss    CacheLoadResult = "miss"
	ResultCorrupt CacheLoadResult = "corrupt"
	ResultStale   CacheLoadResult = "stale"
)

// New builds a fresh set of collectors. Callers register them into a
// *prometheus.Registry themselves (via Metrics.MustRegister) when they
// want them exported; an index built without calling that still works,
// it simply updates collectors nobody scrapes.
func New() *Metrics {
	return &Metrics{
		CompactionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "i18ncompact",
			Name:      "compactions_total",
			Help:      "Number of completed Compact! invocations.",
		}),
		CompactionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "i18ncompact",
			Name:      "compaction_duration_seconds",
			Help:      "Wall-clock time spent in Compact!.",
			Buckets:   prometheus.DefBuckets,
		}),
		CacheLoadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "i18ncompact",
			Name:      "cache_loads_total",
			Help:      "Cache load attempts by result.",
		}, []string{"result"}),
		CacheSaveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "i18ncompact",
			Name:      "cache_save_failures_total",
			Help:      "Cache saves that were skipped or failed.",
		}),
		ArenaBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "i18ncompact",
			Name:      "arena_bytes",
			Help:      "Size of the string arena after the last compaction.",
		}),
		ObjectTableSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "i18ncompact",
			Name:      "object_table_entries",
			Help:      "Number of object side table entries after the last compaction.",
		}),
		SchemaSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "i18ncompact",
			Name:      "schema_columns",
			Help:      "Number of interned flat keys after the last compaction.",
		}),
	}
}

// MustRegister registers every collector into reg. Panics on a
// double-registration, matching prometheus.Registry.MustRegister's own
// contract.
func (m *Metrics) MustRegister(reg *prometheus.Registry) {
	reg.MustRegister(
		m.CompactionsTotal, m.CompactionDuration, m.CacheLoadsTotal,
		m.CacheSaveFailures, m.ArenaBytes, m.ObjectTableSize, m.SchemaSize,
	)
}
