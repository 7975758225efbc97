package warning

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pixelguard/pkg/domain"
)

// Metrics holds Prometheus metrics for the warning bus.
type Metrics struct {
	Emitted            *prometheus.CounterVec
	SubscriberFailures *prometheus.CounterVec
	SubscriberPanics   *prometheus.CounterVec
	BufferDropped      prometheus.Counter
}

// NewMetrics registers bus metrics with reg (the default registerer when nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Emitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pixelguard_warning_emitted_total",
			Help: "Total number of warnings emitted on the bus, by code",
		}, []string{"code"}),
		SubscriberFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pixelguard_warning_subscriber_failures_total",
			Help: "Total number of subscriber errors during emission",
		}, []string{"subscriber"}),
		SubscriberPanics: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pixelguard_warning_subscriber_panics_total",
			Help: "Total number of subscriber panics recovered during emission",
		}, []string{"subscriber"}),
		BufferDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "pixelguard_warning_buffer_dropped_total",
			Help: "Total number of warnings dropped from full ring buffers",
		}),
	}
}

// IncEmitted increments the emitted counter for a code.
func (m *Metrics) IncEmitted(code domain.WarningCode) {
	m.Emitted.WithLabelValues(string(code)).Inc()
}

// IncSubscriberFailures increments the failure counter for a subscriber.
func (m *Metrics) IncSubscriberFailures(name string) {
	m.SubscriberFailures.WithLabelValues(name).Inc()
}

// IncSubscriberPanics increments the panic counter for a subscriber.
func (m *Metrics) IncSubscriberPanics(name string) {
	m.SubscriberPanics.WithLabelValues(name).Inc()
}

// IncBufferDropped increments the ring buffer drop counter.
func (m *Metrics) IncBufferDropped() {
	m.BufferDropped.Inc()
}
