package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks parse activity for the /metrics endpoint.
type Metrics struct {
	ParsesTotal   *prometheus.CounterVec
	ParseDuration prometheus.Histogram
	ParsesActive  prometheus.Gauge
}

// NewMetrics registers the ingest metrics on the given registerer.
// Passing nil uses the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		ParsesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tabular_parses_total",
			Help: "Total parse invocations by file type and outcome.",
		}, []string{"file_type", "outcome"}),
		ParseDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tabular_parse_duration_seconds",
			Help:    "Wall-clock duration of parse invocations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		ParsesActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tabular_parses_active",
			Help: "Number of parses currently running.",
		}),
	}
}

// observe records one completed parse.
func (m *Metrics) observe(fileType string, success bool, seconds float64) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.ParsesTotal.WithLabelValues(fileType, outcome).Inc()
	m.ParseDuration.Observe(seconds)
}
