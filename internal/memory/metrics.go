package memory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pixelguard/internal/keys"
)

// Metrics holds Prometheus metrics for the secured-memory module.
type Metrics struct {
	TamperDetected *prometheus.CounterVec
}

// NewMetrics registers module metrics with reg (the default registerer when nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Metrics{
		TamperDetected: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pixelguard_memory_tamper_detected_total",
			Help: "Total number of secured values found modified, by category",
		}, []string{"category"}),
	}
}

// IncTamper increments the tamper counter for a category.
func (m *Metrics) IncTamper(cat keys.Category) {
	m.TamperDetected.WithLabelValues(string(cat)).Inc()
}
