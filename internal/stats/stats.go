// Package stats implements the optional diagnostics Recorder: a
// histogram of string and subtree sizes fed during compaction and read
// back by the CLI inspector (SPEC_FULL.md §4.12).
package stats

import (
	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
)

// Recorder samples two distributions as the Compactor runs: the byte
// length of every string leaf it visits (including duplicates and strings
// that spill to the object table), and the fan-out (child
// count) of every interior node. A nil *Recorder is valid and a no-op,
// so compaction can always call its methods unconditionally.
type Recorder struct {
	stringLen *hdrhistogram.Histogram
	fanout    *hdrhistogram.Histogram
}

// New returns a Recorder tracking byte lengths from 1 to 1<<20 and
// fan-out counts from 1 to 1<<16, both at 3 significant figures.
func New() *Recorder {
	return &Recorder{
		stringLen: hdrhistogram.New(1, 1<<20, 3),
		fanout:    hdrhistogram.New(1, 1<<16, 3),
	}
}

// ObserveString records one string leaf's byte length.
func (r *Recorder) ObserveString(length int) {
	if r == nil {
		return
	}
	_ = r.stringLen.RecordValue(int64(length))
}

// ObserveFanout records one interior node's child count.
func (r *Recorder) ObserveFanout(children int) {
	if r == nil {
		return
	}
	_ = r.fanout.RecordValue(int64(children))
}

// Summary is a snapshot of both distributions' key percentiles, cheap to
// copy and safe to print.
type Summary struct {
	StringLenP50, StringLenP90, StringLenP99 int64
	FanoutP50, FanoutP90, FanoutP99          int64
	StringLenMax, FanoutMax                  int64
	Samples                                  int64
}

// Snapshot reads the current distributions. Returns the zero Summary for
// a nil Recorder.
func (r *Recorder) Snapshot() Summary {
	if r == nil {
		return Summary{}
	}
	return Summary{
		StringLenP50: r.stringLen.ValueAtQuantile(50),
		StringLenP90: r.stringLen.ValueAtQuantile(90),
		StringLenP99: r.stringLen.ValueAtQuantile(99),
		StringLenMax: r.stringLen.Max(),
		FanoutP50:    r.fanout.ValueAtQuantile(50),
		FanoutP90:    r.fanout.ValueAtQuantile(90),
		FanoutP99:    r.fanout.ValueAtQuantile(99),
		FanoutMax:    r.fanout.Max(),
		Samples:      r.stringLen.TotalCount(),
	}
}

// StringLengthSeries returns the string length at each of buckets evenly
// spaced quantiles, suitable for an asciigraph plot. This reads quantiles
// from the histogram rather
// than individual samples (hdrhistogram doesn't retain raw samples), so
// the series is a smoothed approximation of the distribution shape, which
// is all a terminal sparkline needs.
func (r *Recorder) StringLengthSeries(buckets int) []float64 {
	if r == nil || buckets <= 0 {
		return nil
	}
	out := make([]float64, buckets)
	for i := 0; i < buckets; i++ {
		q := float64(i+1) / float64(buckets) * 100
		out[i] = float64(r.stringLen.ValueAtQuantile(q))
	}
	return out
}
