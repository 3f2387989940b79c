package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the poller.
type Metrics struct {
	PollCycles      prometheus.Counter
	PollDuration    prometheus.Histogram
	SourceFailures  *prometheus.CounterVec // labels: source={weather,aqi}
	IngestWarnings  prometheus.Counter
	MetricsResolved prometheus.Gauge
	SinkFailures    *prometheus.CounterVec // labels: sink
	RainTotal       prometheus.Counter
}

// NewMetrics creates and registers all poller metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PollCycles,
		m.PollDuration,
		m.SourceFailures,
		m.IngestWarnings,
		m.MetricsResolved,
		m.SinkFailures,
		m.RainTotal,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PollCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weatherlink",
			Name:      "poll_cycles_total",
			Help:      "Total poll cycles run.",
		}),
		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weatherlink",
			Name:      "poll_duration_seconds",
			Help:      "Duration of a complete fetch and normalize cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		}),
		SourceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherlink",
			Name:      "source_failures_total",
			Help:      "Device fetches that failed, by source.",
		}, []string{"source"}),
		IngestWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weatherlink",
			Name:      "ingest_warnings_total",
			Help:      "Payloads that contained condition records that could not be ingested.",
		}),
		MetricsResolved: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weatherlink",
			Name:      "metrics_resolved",
			Help:      "Number of metrics present in the latest record.",
		}),
		SinkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherlink",
			Name:      "sink_failures_total",
			Help:      "Record publish failures, by sink.",
		}, []string{"sink"}),
		RainTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weatherlink",
			Name:      "rain_inches_total",
			Help:      "Rain accumulated since start, in inches.",
		}),
	}
}
