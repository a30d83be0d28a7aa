package network

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/aretw0/lattice/pkg/domain"
)

type entry struct {
	component domain.Component
	ownership domain.Ownership
}

// Registry is the arena owning the components of a network. Handles index the
// arena and stay valid for the registry's lifetime.
//
// Lookups never fail loudly: an unknown identity or handle is reported through
// the boolean result, on every access path.
type Registry struct {
	entries []entry
	index   map[domain.Component]domain.Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[domain.Component]domain.Handle),
	}
}

// Add registers c as exclusively owned. Adding an identity that is already
// registered returns its existing handle and changes nothing.
func (r *Registry) Add(c domain.Component) (domain.Handle, error) {
	return r.add(c, domain.Exclusive)
}

// AddShared registers c as co-owned with other holders. Adding an identity that
// is already registered returns its existing handle and changes nothing.
func (r *Registry) AddShared(c domain.Component) (domain.Handle, error) {
	return r.add(c, domain.Shared)
}

func (r *Registry) add(c domain.Component, o domain.Ownership) (domain.Handle, error) {
	if err := checkIdentity(c); err != nil {
		return 0, err
	}
	if h, ok := r.index[c]; ok {
		return h, nil
	}

	h := domain.Handle(len(r.entries))
	r.entries = append(r.entries, entry{component: c, ownership: o})
	r.index[c] = h

	if rc, ok := c.(domain.RefCounted); ok {
		rc.Retain()
	}
	return h, nil
}

// checkIdentity rejects components that cannot key the identity index.
func checkIdentity(c domain.Component) error {
	if c == nil {
		return fmt.Errorf("%w: nil component", domain.ErrInvalidComponent)
	}
	if k := reflect.TypeOf(c).Kind(); k != reflect.Pointer {
		return fmt.Errorf("%w: %s is a %s value, components must be pointers", domain.ErrInvalidComponent, c.Kind(), k)
	}
	return nil
}

// Lookup returns the handle of c, or false when c is not registered.
func (r *Registry) Lookup(c domain.Component) (domain.Handle, bool) {
	if checkIdentity(c) != nil {
		return 0, false
	}
	h, ok := r.index[c]
	return h, ok
}

// Component returns the component owned under h, or false when h is unknown.
func (r *Registry) Component(h domain.Handle) (domain.Component, bool) {
	if h < 0 || int(h) >= len(r.entries) {
		return nil, false
	}
	return r.entries[h].component, true
}

// Ownership returns how h is held, or false when h is unknown.
func (r *Registry) Ownership(h domain.Handle) (domain.Ownership, bool) {
	if h < 0 || int(h) >= len(r.entries) {
		return 0, false
	}
	return r.entries[h].ownership, true
}

// Components returns every registered component in registration order.
func (r *Registry) Components() []domain.Component {
	out := make([]domain.Component, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.component)
	}
	return out
}

// Handles returns every handle in registration order.
func (r *Registry) Handles() []domain.Handle {
	out := make([]domain.Handle, len(r.entries))
	for i := range r.entries {
		out[i] = domain.Handle(i)
	}
	return out
}

// Len returns the number of registered components.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Release gives up ownership of every component and empties the registry.
// Reference counted components are closed when their last holder releases
// them; other components are closed only when held exclusively.
//
// The registry is emptied before any component is closed, so ownership cycles
// that lead back here find nothing left to release.
func (r *Registry) Release() error {
	entries := r.entries
	r.entries = nil
	r.index = make(map[domain.Component]domain.Handle)

	var errs []error
	for _, e := range entries {
		last := e.ownership == domain.Exclusive
		if rc, ok := e.component.(domain.RefCounted); ok {
			last = rc.Release()
		}
		if !last {
			continue
		}
		if closer, ok := e.component.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close %s: %w", e.component.Kind(), err))
			}
		}
	}
	return errors.Join(errs...)
}
