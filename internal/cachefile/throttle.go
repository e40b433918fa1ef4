package cachefile

import (
	"time"

	"github.com/cockroachdb/tokenbucket"
)

// Throttle limits how often one index instance may attempt a cache save.
// A caller that calls compact! in a tight loop (a common shape in tests)
// should not thrash the filesystem; a throttled save is simply skipped,
// not an error (SPEC_FULL.md §4.13).
type Throttle struct {
	bucket tokenbucket.TokenBucket
}

// NewThrottle allows one save per interval, with a burst of one (no
// save is ever queued or delayed — it either proceeds immediately or is
// skipped).
func NewThrottle(interval time.Duration) *Throttle {
	t := &Throttle{}
	rate := tokenbucket.Rate(1 / interval.Seconds())
	t.bucket.Init(rate, tokenbucket.Tokens(1))
	return t
}

// Allow reports whether a save may proceed right now, consuming the
// token if so.
func (t *Throttle) Allow() bool {
	ok, _ := t.bucket.TryToFulfill(1)
	return ok
}
