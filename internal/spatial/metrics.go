package spatial

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for teleport detection.
type Metrics struct {
	Checks     prometheus.Counter
	Detections prometheus.Counter
	Targets    prometheus.Gauge
}

// NewMetrics registers spatial metrics with reg (the default registerer when nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Checks: f.NewCounter(prometheus.CounterOpts{
			Name: "pixelguard_teleport_checks_total",
			Help: "Total number of per-target displacement checks",
		}),
		Detections: f.NewCounter(prometheus.CounterOpts{
			Name: "pixelguard_teleport_detections_total",
			Help: "Total number of teleport warnings emitted",
		}),
		Targets: f.NewGauge(prometheus.GaugeOpts{
			Name: "pixelguard_teleport_targets",
			Help: "Number of currently tracked targets",
		}),
	}
}

func (m *Metrics) IncChecks() { m.Checks.Inc() }
func (m *Metrics) IncDetections() { m.Detections.Inc() }
func (m *Metrics) SetTargets(n int) { m.Targets.Set(float64(n)) }
