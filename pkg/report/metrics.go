package report

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors updated by a Generator.
type Metrics struct {
	registry  *prometheus.Registry
	generated *prometheus.CounterVec
	duration  prometheus.Histogram
	untracked prometheus.Gauge
}

// NewMetrics registers the report collectors on a new registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		generated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "energyreport",
				Name:      "reports_total",
				Help:      "Report generations by result.",
			},
			[]string{"result"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "energyreport",
			Name:      "report_duration_seconds",
			Help:      "Duration of successful report generations in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		untracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "energyreport",
			Name:      "last_untracked_kwh",
			Help:      "Untracked consumption of the last generated report.",
		}),
	}
	registry.MustRegister(m.generated, m.duration, m.untracked)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
