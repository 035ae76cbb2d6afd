// Package metrics exposes Prometheus collectors for the build-and-launch
// pipeline. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lyo"

type Metrics struct {
	GenerationTotal    *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	LaunchTotal        *prometheus.CounterVec
	AnomalyTotal       *prometheus.CounterVec
	DispatchTotal      *prometheus.CounterVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		GenerationTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "generation",
				Name:      "total",
				Help:      "Course generation attempts by outcome",
			},
			[]string{"outcome"},
		),
		GenerationDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "generation",
				Name:      "duration_seconds",
				Help:      "Course generation duration in seconds",
				Buckets:   []float64{0.5, 1, 5, 10, 30, 60, 120},
			},
		),
		LaunchTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "classroom",
				Name:      "launch_total",
				Help:      "Classroom launches by outcome",
			},
			[]string{"outcome"},
		),
		AnomalyTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "classroom",
				Name:      "anomaly_total",
				Help:      "Protocol anomalies by kind",
			},
			[]string{"kind"},
		),
		DispatchTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "engine",
				Name:      "dispatch_total",
				Help:      "Engine commands by method and outcome",
			},
			[]string{"method", "outcome"},
		),
	}
}

func (m *Metrics) Generation(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.GenerationTotal.WithLabelValues(outcome).Inc()
	m.GenerationDuration.Observe(d.Seconds())
}

func (m *Metrics) Launch(outcome string) {
	if m == nil {
		return
	}
	m.LaunchTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Anomaly(kind string) {
	if m == nil {
		return
	}
	m.AnomalyTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) Dispatch(method, outcome string) {
	if m == nil {
		return
	}
	m.DispatchTotal.WithLabelValues(method, outcome).Inc()
}
