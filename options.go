package i18ncompact

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shopify/i18ncompact/internal/schema"
)

// Options configures a Store. The zero value is not ready to use; call
// (*Options).EnsureDefaults or pass Options to New, which does so
// internally, mirroring how the teacher's own Options type is never used
// without that call.
type Options struct {
	// Separator joins path components into a flat key. Defaults to ".".
	Separator string

	// CachePath, if set, is the file the Store persists its compacted
	// state to and attempts to load from on EagerLoad.
	CachePath string

	// CacheDigest selects the fingerprint mode: false hashes path+mtime
	// pairs (fast, the default); true hashes file contents (slower, but
	// immune to mtime noise from a checkout or deploy that doesn't
	// preserve timestamps).
	CacheDigest bool

	// CacheCompression wraps the on-disk frame in zstd.
	CacheCompression bool

	// SaveInterval throttles repeated cache saves to at most one per
	// interval. Defaults to 1s; set a negative value to disable
	// throttling entirely.
	SaveInterval time.Duration

	// MetricsRegistry, if set, receives the Store's Prometheus
	// collectors. A nil registry means the Store still updates its
	// collectors internally, just to nobody's benefit.
	MetricsRegistry *prometheus.Registry

	// Stats enables the diagnostics Recorder (string-length and fan-out
	// histograms) during compaction. Disabled by default since it is
	// pure overhead for a production Store that never calls Stats().
	Stats bool
}

// EnsureDefaults returns a copy of o with every unset field given its
// default value. It is always safe to call, including on a nil
// receiver.
func (o *Options) EnsureDefaults() *Options {
	if o == nil {
		o = &Options{}
	}
	out := *o
	if out.Separator == "" {
		out.Separator = schema.DefaultSeparator
	}
	if out.SaveInterval == 0 {
		out.SaveInterval = time.Second
	}
	return &out
}
