package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestMustRegisterSucceedsOnce(t *testing.T) {
	m := New()
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { m.MustRegister(reg) })
}

func TestMustRegisterPanicsOnDoubleRegistration(t *testing.T) {
	m := New()
	reg := prometheus.NewRegistry()
	m.MustRegister(reg)
	require.Panics(t, func() { m.MustRegister(reg) })
}

func TestCountersIncrementAndLabel(t *testing.T) {
	m := New()
	m.CompactionsTotal.Inc()
	m.CacheLoadsTotal.WithLabelValues(string(ResultHit)).Inc()
	m.CacheLoadsTotal.WithLabelValues(string(ResultMiss)).Inc()
	m.ArenaBytes.Set(1024)

	var metric dto.Metric
	require.NoError(t, m.CompactionsTotal.Write(&metric))
	require.Equal(t, float64(1), metric.GetCounter().GetValue())

	var gauge dto.Metric
	require.NoError(t, m.ArenaBytes.Write(&gauge))
	require.Equal(t, float64(1024), gauge.GetGauge().GetValue())
}
