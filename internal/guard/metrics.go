package guard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pixelguard/pkg/domain"
)

// Metrics holds Prometheus metrics for the guard hub.
type Metrics struct {
	Ticks        *prometheus.CounterVec
	ModulePanics *prometheus.CounterVec
	Modules      prometheus.Gauge
}

// NewMetrics registers guard metrics with reg (the default registerer when nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Ticks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pixelguard_guard_ticks_total",
			Help: "Total number of host ticks forwarded to modules",
		}, []string{"step"}),
		ModulePanics: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pixelguard_guard_module_panics_total",
			Help: "Total number of module panics recovered by the guard",
		}, []string{"kind"}),
		Modules: f.NewGauge(prometheus.GaugeOpts{
			Name: "pixelguard_guard_modules",
			Help: "Number of registered protection modules",
		}),
	}
}

// IncTicks increments the tick counter.
func (m *Metrics) IncTicks(fixed bool) {
	step := "variable"
	if fixed {
		step = "fixed"
	}
	m.Ticks.WithLabelValues(step).Inc()
}

// IncModulePanics increments the panic counter for a module kind.
func (m *Metrics) IncModulePanics(kind domain.ModuleKind) {
	m.ModulePanics.WithLabelValues(string(kind)).Inc()
}

// SetModules sets the registered modules gauge.
func (m *Metrics) SetModules(n int) {
	m.Modules.Set(float64(n))
}
