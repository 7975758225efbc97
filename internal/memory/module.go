// Package memory is the secured-memory protection module. It owns the shadow
// switch and per-category tolerances used by secured cells, and turns their
// tamper reports into MEMORY_TAMPER warnings.
package memory

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"pixelguard/internal/keys"
	"pixelguard/internal/secured"
	"pixelguard/internal/warning"
	"pixelguard/pkg/domain"
)

// DefaultEpsilons are the tolerances used when none are configured.
func DefaultEpsilons() map[keys.Category]float64 {
	return map[keys.Category]float64{
		keys.Float32:    1e-6,
		keys.Float64:    1e-6,
		keys.Vector3:    0.1,
		keys.Vector4:    0.1,
		keys.Quaternion: 0.1,
		keys.Color:      0.1,
	}
}

// Module implements secured.Monitor.
type Module struct {
	emitter  warning.Emitter
	registry *keys.Registry
	logger   *slog.Logger
	metrics  *Metrics

	shadowing atomic.Bool
	epsilons  map[keys.Category]float64
}

var _ secured.Monitor = (*Module)(nil)

// Option configures the Module.
type Option func(*Module)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Module) {
		m.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(metrics *Metrics) Option {
	return func(m *Module) {
		m.metrics = metrics
	}
}

// WithKeys sets the key registry handed to cells created through CellOptions.
func WithKeys(r *keys.Registry) Option {
	return func(m *Module) {
		m.registry = r
	}
}

// WithEpsilon overrides the tolerance of one category.
func WithEpsilon(cat keys.Category, eps float64) Option {
	return func(m *Module) {
		if eps >= 0 {
			m.epsilons[cat] = eps
		}
	}
}

// WithShadowing sets the initial shadow switch. Shadowing is on by default.
func WithShadowing(enabled bool) Option {
	return func(m *Module) {
		m.shadowing.Store(enabled)
	}
}

// New creates the module.
func New(emitter warning.Emitter, opts ...Option) (*Module, error) {
	if emitter == nil {
		return nil, errors.New("warning emitter is required")
	}
	m := &Module{
		emitter:  emitter,
		epsilons: DefaultEpsilons(),
	}
	m.shadowing.Store(true)
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = keys.Default()
	}
	return m, nil
}

// Kind implements guard.Module.
func (m *Module) Kind() domain.ModuleKind {
	return domain.ModuleSecuredMemory
}

// ShadowEnabled implements secured.Monitor.
func (m *Module) ShadowEnabled() bool {
	return m.shadowing.Load()
}

// SetShadowing toggles shadow copies for cells written from now on. Cells
// written while shadowing was off are not checked until their next Set.
func (m *Module) SetShadowing(enabled bool) {
	m.shadowing.Store(enabled)
}

// Epsilon implements secured.Monitor. Discrete categories have no tolerance.
func (m *Module) Epsilon(cat keys.Category) float64 {
	return m.epsilons[cat]
}

// Keys returns the registry cells created through this module use.
func (m *Module) Keys() *keys.Registry {
	return m.registry
}

// CellOptions returns the options that bind a new cell to this module.
func (m *Module) CellOptions(label string) []secured.Option {
	return []secured.Option{
		secured.WithKeys(m.registry),
		secured.WithMonitor(m),
		secured.WithLabel(label),
	}
}

// ReportTamper implements secured.Monitor.
func (m *Module) ReportTamper(cat keys.Category, label string) {
	ctx := context.Background()
	if m.metrics != nil {
		m.metrics.IncTamper(cat)
	}
	if m.logger != nil {
		m.logger.WarnContext(ctx, "secured value modified outside the application",
			"category", string(cat),
			"cell", label,
		)
	}
	w := warning.New(domain.WarningMemoryTamper, m.Kind()).WithAttr("category", string(cat))
	if label != "" {
		w = w.WithAttr("cell", label)
	}
	m.emitter.Emit(ctx, w)
}
