// Package guard hosts protection modules. It owns the module registry and fans
// the host's per-tick and module-load notifications out to the modules that
// want them.
//
// The guard never runs its own loop; the host calls OnTick once per simulation
// step from a single goroutine.
package guard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"pixelguard/internal/warning"
	"pixelguard/pkg/domain"
)

// Ticker receives variable-rate ticks.
type Ticker interface {
	OnTick(ctx context.Context, delta time.Duration)
}

// FixedTicker receives fixed-rate ticks.
type FixedTicker interface {
	OnFixedTick(ctx context.Context, delta time.Duration)
}

// LoadListener is notified when the host loads new code at runtime.
type LoadListener interface {
	OnModuleLoaded(ctx context.Context, m domain.CodeModule)
}

// Guard is the hub hosts talk to.
type Guard struct {
	registry *Registry
	bus      *warning.Bus
	logger   *slog.Logger
	metrics  *Metrics
}

// Option configures the Guard.
type Option func(*Guard)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(g *Guard) {
		g.metrics = m
	}
}

// New creates a guard around an existing warning bus.
func New(bus *warning.Bus, opts ...Option) (*Guard, error) {
	if bus == nil {
		return nil, errors.New("warning bus is required")
	}
	g := &Guard{
		registry: NewRegistry(),
		bus:      bus,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Bus returns the warning bus modules report through.
func (g *Guard) Bus() *warning.Bus {
	return g.bus
}

// Registry returns the module registry.
func (g *Guard) Registry() *Registry {
	return g.registry
}

// Register installs a module. Registering a second module of the same kind
// returns the first one.
func (g *Guard) Register(m Module) (Module, bool) {
	got, added := g.registry.Register(m)
	if added {
		g.observeModules()
		if g.logger != nil {
			g.logger.Info("protection module registered", "kind", string(m.Kind()))
		}
	}
	return got, added
}

// Get returns the module registered for kind.
func (g *Guard) Get(kind domain.ModuleKind) (Module, bool) {
	return g.registry.Get(kind)
}

// Has reports whether a module of kind is registered.
func (g *Guard) Has(kind domain.ModuleKind) bool {
	return g.registry.Has(kind)
}

// Remove uninstalls the module of kind, closing it if it holds resources.
func (g *Guard) Remove(kind domain.ModuleKind) error {
	m, ok := g.registry.Remove(kind)
	if !ok {
		return nil
	}
	g.observeModules()
	if c, ok := m.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close module %s: %w", kind, err)
		}
	}
	return nil
}

// OnTick forwards one simulation step. isFixedStep selects FixedTicker modules
// instead of Ticker modules.
func (g *Guard) OnTick(ctx context.Context, delta time.Duration, isFixedStep bool) {
	if g.metrics != nil {
		g.metrics.IncTicks(isFixedStep)
	}
	for _, m := range g.registry.Modules() {
		if isFixedStep {
			if t, ok := m.(FixedTicker); ok {
				g.safely(ctx, m, func() { t.OnFixedTick(ctx, delta) })
			}
			continue
		}
		if t, ok := m.(Ticker); ok {
			g.safely(ctx, m, func() { t.OnTick(ctx, delta) })
		}
	}
}

// OnModuleLoaded forwards a host code-load event.
func (g *Guard) OnModuleLoaded(ctx context.Context, cm domain.CodeModule) {
	for _, m := range g.registry.Modules() {
		if l, ok := m.(LoadListener); ok {
			g.safely(ctx, m, func() { l.OnModuleLoaded(ctx, cm) })
		}
	}
}

// Close removes every module, closing those that hold resources.
func (g *Guard) Close() error {
	var errs []error
	for _, m := range g.registry.Modules() {
		if err := g.Remove(m.Kind()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (g *Guard) safely(ctx context.Context, m Module, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if g.metrics != nil {
				g.metrics.IncModulePanics(m.Kind())
			}
			if g.logger != nil {
				g.logger.ErrorContext(ctx, "protection module panicked",
					"kind", string(m.Kind()),
					"panic", fmt.Sprint(r),
				)
			}
		}
	}()
	fn()
}

func (g *Guard) observeModules() {
	if g.metrics != nil {
		g.metrics.SetModules(g.registry.Len())
	}
}
