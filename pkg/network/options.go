package network

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/model"
)

// core holds the state shared by every network flavour.
type core struct {
	model.Base
	self     domain.Component
	registry *Registry
	logger   *slog.Logger
	hooks    domain.Hooks
}

// Option defines a functional option for configuring a network.
type Option func(*core)

// WithLogger sets a custom structured logger for the network.
func WithLogger(logger *slog.Logger) Option {
	return func(c *core) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(c *core) {
		c.hooks = hooks
	}
}

func newCore(self domain.Component, kind string, opts []Option) core {
	c := core{
		self:     self,
		registry: NewRegistry(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	c.logger = c.logger.With("network", kind)
	return c
}

// Configure applies opts to an existing network, typically one materialized
// from a document.
func (c *core) Configure(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Registry returns the network's component registry.
func (c *core) Registry() *Registry {
	return c.registry
}

// Add registers a component as exclusively owned by the network.
// A network never owns itself.
func (c *core) Add(comp domain.Component) (domain.Handle, error) {
	if err := c.admit(comp); err != nil {
		return 0, err
	}
	return c.registry.Add(comp)
}

// AddShared registers a component co-owned by the network.
func (c *core) AddShared(comp domain.Component) (domain.Handle, error) {
	if err := c.admit(comp); err != nil {
		return 0, err
	}
	return c.registry.AddShared(comp)
}

func (c *core) admit(comp domain.Component) error {
	if comp != nil && comp == c.self {
		return fmt.Errorf("%w: %s cannot own itself", domain.ErrInvalidComponent, comp.Kind())
	}
	return nil
}

// Lookup returns the handle of a registered component.
func (c *core) Lookup(comp domain.Component) (domain.Handle, bool) {
	return c.registry.Lookup(comp)
}

// Component returns the component registered under h.
func (c *core) Component(h domain.Handle) (domain.Component, bool) {
	return c.registry.Component(h)
}

// Components returns every registered component.
func (c *core) Components() []domain.Component {
	return c.registry.Components()
}

// checkEndpoints validates both ends of a coupling before anything is
// registered. The network itself is always a valid endpoint.
func (c *core) checkEndpoints(src, dst domain.Component) error {
	for _, comp := range []domain.Component{src, dst} {
		if comp == nil {
			return fmt.Errorf("%w: nil component", domain.ErrComponentNotFound)
		}
		if comp == c.self {
			continue
		}
		if err := checkIdentity(comp); err != nil {
			return err
		}
	}
	return nil
}

// ref translates a component into a graph reference, registering it when it
// is not the network itself.
func (c *core) ref(self, comp domain.Component) (domain.Ref, error) {
	if comp == self {
		return domain.Boundary(), nil
	}
	h, err := c.registry.Add(comp)
	if err != nil {
		return domain.Ref{}, err
	}
	return domain.Owned(h), nil
}

// lookupRef translates without registering.
func (c *core) lookupRef(self, comp domain.Component) (domain.Ref, bool) {
	if comp == self {
		return domain.Boundary(), true
	}
	h, ok := c.registry.Lookup(comp)
	if !ok {
		return domain.Ref{}, false
	}
	return domain.Owned(h), true
}

// resolve returns the live component behind r.
func (c *core) resolve(self domain.Component, r domain.Ref) (domain.Component, bool) {
	h, owned := r.Handle()
	if !owned {
		return self, true
	}
	return c.registry.Component(h)
}
