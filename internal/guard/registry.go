package guard

import (
	"sync"

	"pixelguard/pkg/domain"
)

// Module is anything the guard can host. Modules opt into tick and load
// notifications by also implementing Ticker, FixedTicker or LoadListener.
type Module interface {
	Kind() domain.ModuleKind
}

// Registry tracks at most one module per kind, in registration order.
type Registry struct {
	mu      sync.RWMutex
	order   []domain.ModuleKind
	modules map[domain.ModuleKind]Module
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[domain.ModuleKind]Module)}
}

// Register stores m unless a module of the same kind is already present.
// It returns the module that ends up registered and whether m was stored.
func (r *Registry) Register(m Module) (Module, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.modules[m.Kind()]; ok {
		return existing, false
	}
	r.modules[m.Kind()] = m
	r.order = append(r.order, m.Kind())
	return m, true
}

// Get returns the module registered for kind.
func (r *Registry) Get(kind domain.ModuleKind) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[kind]
	return m, ok
}

// Has reports whether a module of kind is registered.
func (r *Registry) Has(kind domain.ModuleKind) bool {
	_, ok := r.Get(kind)
	return ok
}

// Remove drops the module registered for kind and returns it.
func (r *Registry) Remove(kind domain.ModuleKind) (Module, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.modules[kind]
	if !ok {
		return nil, false
	}
	delete(r.modules, kind)
	for i, k := range r.order {
		if k == kind {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	return m, true
}

// Modules returns the registered modules in registration order.
func (r *Registry) Modules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Module, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.modules[k])
	}
	return out
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Lookup returns the first registered module of concrete type T.
func Lookup[T Module](r *Registry) (T, bool) {
	for _, m := range r.Modules() {
		if t, ok := m.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}
