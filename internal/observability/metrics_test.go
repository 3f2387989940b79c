package observability

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsForTesting_IsUnregistered(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.PollCycles.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.PollCycles))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.PollCycles))
}

func TestMetrics_RegisterOnCustomRegistry(t *testing.T) {
	m := NewMetricsForTesting()
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(m.SourceFailures))
	require.NoError(t, reg.Register(m.RainTotal))

	m.SourceFailures.WithLabelValues("weather").Inc()
	m.SourceFailures.WithLabelValues("weather").Inc()
	m.RainTotal.Add(0.25)

	expected := `
# HELP weatherlink_source_failures_total Device fetches that failed, by source.
# TYPE weatherlink_source_failures_total counter
weatherlink_source_failures_total{source="weather"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "weatherlink_source_failures_total"))
	assert.InDelta(t, 0.25, testutil.ToFloat64(m.RainTotal), 1e-9)
}
