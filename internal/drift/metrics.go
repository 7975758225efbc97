package drift

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for clock drift detection.
type Metrics struct {
	Intervals       prometheus.Counter
	FalsePositives  prometheus.Counter
	Detections      prometheus.Counter
	Discontinuities prometheus.Counter
	TimeChanges     prometheus.Counter
	NetworkFailures prometheus.Counter
	NetworkLatency  prometheus.Histogram
}

// NewMetrics registers drift metrics with reg (the default registerer when nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Intervals: f.NewCounter(prometheus.CounterOpts{
			Name: "pixelguard_speedhack_intervals_total",
			Help: "Total number of completed clock comparison intervals",
		}),
		FalsePositives: f.NewCounter(prometheus.CounterOpts{
			Name: "pixelguard_speedhack_false_positives_total",
			Help: "Total number of intervals where clocks diverged beyond the threshold",
		}),
		Detections: f.NewCounter(prometheus.CounterOpts{
			Name: "pixelguard_speedhack_detections_total",
			Help: "Total number of speed hack warnings emitted",
		}),
		Discontinuities: f.NewCounter(prometheus.CounterOpts{
			Name: "pixelguard_speedhack_discontinuities_total",
			Help: "Total number of wall clock jumps that forced a rebaseline",
		}),
		TimeChanges: f.NewCounter(prometheus.CounterOpts{
			Name: "pixelguard_secured_time_changes_total",
			Help: "Total number of system time changes detected",
		}),
		NetworkFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "pixelguard_secured_time_network_failures_total",
			Help: "Total number of failed network time fetches",
		}),
		NetworkLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pixelguard_secured_time_network_latency_seconds",
			Help:    "Latency of network time fetches",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5},
		}),
	}
}

func (m *Metrics) IncIntervals() { m.Intervals.Inc() }
func (m *Metrics) IncFalsePositives() { m.FalsePositives.Inc() }
func (m *Metrics) IncDetections() { m.Detections.Inc() }
func (m *Metrics) IncDiscontinuities() { m.Discontinuities.Inc() }
func (m *Metrics) IncTimeChanges() { m.TimeChanges.Inc() }
func (m *Metrics) IncNetworkFailures() { m.NetworkFailures.Inc() }

// ObserveNetworkLatency records a fetch latency in seconds.
func (m *Metrics) ObserveNetworkLatency(seconds float64) {
	m.NetworkLatency.Observe(seconds)
}
