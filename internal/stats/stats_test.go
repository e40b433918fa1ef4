package stats

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNilRecorderIsNoOp(t *testing.T) {
	var r *Recorder
	require.NotPanics(t, func() {
		r.ObserveString(10)
		r.ObserveFanout(3)
	})
	require.Equal(t, Summary{}, r.Snapshot())
	require.Nil(t, r.StringLengthSeries(5))
}

func TestRecorderSnapshotReflectsObservations(t *testing.T) {
	r := New()
	for _, n := range []int{10, 20, 30, 40, 50} {
		r.ObserveString(n)
	}
	for _, n := range []int{1, 2, 3} {
		r.ObserveFanout(n)
	}

	s := r.Snapshot()
	require.EqualValues(t, 5, s.Samples)
	require.Equal(t, int64(50), s.StringLenMax)
	require.Equal(t, int64(3), s.FanoutMax)
	require.Greater(t, s.StringLenP50, int64(0))
}

func TestStringLengthSeriesBucketCount(t *testing.T) {
	r := New()
	for i := 1; i <= 100; i++ {
		r.ObserveString(i)
	}
	series := r.StringLengthSeries(10)
	require.Len(t, series, 10)
}
