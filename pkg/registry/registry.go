package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/lattice/pkg/domain"
)

// Factory creates a fresh, zero-state component of a registered kind.
type Factory func() domain.Component

// Registry maps component kinds to the factories that materialize them on load.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory to the registry.
// If a factory with the same kind exists, it is overwritten.
func (r *Registry) Register(kind string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = fn
}

// New looks up a factory by kind and creates a component.
// Returns domain.ErrUnknownKind if the kind is not registered.
func (r *Registry) New(kind string) (domain.Component, error) {
	r.mu.RLock()
	fn, ok := r.factories[kind]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownKind, kind)
	}

	c := fn()
	if c == nil {
		return nil, fmt.Errorf("factory for %s returned nil", kind)
	}
	if c.Kind() != kind {
		return nil, fmt.Errorf("factory for %s built a %s", kind, c.Kind())
	}
	return c, nil
}

// Has reports whether kind is registered.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[kind]
	return ok
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
