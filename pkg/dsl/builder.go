package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/model"
	"github.com/aretw0/lattice/pkg/network"
)

// Self names the boundary of the network being built.
const Self = "self"

// Resolver returns the component declared under name, building it on first use.
type Resolver func(name string) (domain.Component, error)

// Factory builds a declared component. It may resolve the components it
// depends on.
type Factory func(resolve Resolver) (domain.Component, error)

type declaration struct {
	name  string
	build Factory
}

type coupling struct {
	from  endpoint
	to    []endpoint
	times int
}

type endpoint struct {
	name string
	port domain.Port
}

// Builder manages the network construction.
type Builder struct {
	decls     []declaration
	names     map[string]bool
	couplings []*coupling
	opts      []network.Option
	errs      []error
}

// New creates a new network builder. opts configure the built network.
func New(opts ...network.Option) *Builder {
	return &Builder{
		names: make(map[string]bool),
		opts:  opts,
	}
}

// Define declares a component built by fn when the network is built.
func (b *Builder) Define(name string, fn Factory) *Builder {
	switch {
	case name == "":
		b.errs = append(b.errs, errors.New("component name cannot be empty"))
	case name == Self:
		b.errs = append(b.errs, fmt.Errorf("component name %q is reserved", Self))
	case b.names[name]:
		b.errs = append(b.errs, fmt.Errorf("component %q declared twice", name))
	default:
		b.names[name] = true
		b.decls = append(b.decls, declaration{name: name, build: fn})
	}
	return b
}

// Add declares an existing component under name.
func (b *Builder) Add(name string, c domain.Component) *Builder {
	if c == nil {
		b.errs = append(b.errs, fmt.Errorf("component %q is nil", name))
		return b
	}
	return b.Define(name, func(Resolver) (domain.Component, error) {
		return c, nil
	})
}

// Atomic declares a plain atomic component labeled name.
func (b *Builder) Atomic(name string) *Builder {
	return b.Define(name, func(Resolver) (domain.Component, error) {
		return model.NewAtomic(name), nil
	})
}

// Wrap declares a wrapper around the component declared as target.
func (b *Builder) Wrap(name, target string) *Builder {
	return b.Define(name, func(resolve Resolver) (domain.Component, error) {
		c, err := resolve(target)
		if err != nil {
			return nil, fmt.Errorf("wrapper %q: %w", name, err)
		}
		w := model.NewWrapper(c)
		w.Name = name
		return w, nil
	})
}

// Network declares a nested network populated by fn.
func (b *Builder) Network(name string, fn func(*Builder)) *Builder {
	return b.Define(name, func(Resolver) (domain.Component, error) {
		inner := New(b.opts...)
		fn(inner)
		d, err := inner.Build()
		if err != nil {
			return nil, fmt.Errorf("network %q: %w", name, err)
		}
		return d, nil
	})
}

// Connect starts a coupling from (name, port).
func (b *Builder) Connect(name string, port domain.Port) *CouplingBuilder {
	c := &coupling{from: endpoint{name: name, port: port}, times: 1}
	b.couplings = append(b.couplings, c)
	return &CouplingBuilder{builder: b, coupling: c}
}

// Build creates the network: declared components are registered in
// declaration order, then every coupling is added.
func (b *Builder) Build() (*network.Digraph, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	d := network.New(b.opts...)
	built := make(map[string]domain.Component, len(b.decls))
	building := make(map[string]bool)
	index := make(map[string]declaration, len(b.decls))
	for _, decl := range b.decls {
		index[decl.name] = decl
	}

	var resolve Resolver
	resolve = func(name string) (domain.Component, error) {
		if name == Self {
			return d, nil
		}
		if c, ok := built[name]; ok {
			return c, nil
		}
		decl, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrComponentNotFound, name)
		}
		if building[name] {
			return nil, fmt.Errorf("component %q depends on itself", name)
		}
		building[name] = true
		c, err := decl.build(resolve)
		if err != nil {
			return nil, err
		}
		built[name] = c
		return c, nil
	}

	for _, decl := range b.decls {
		c, err := resolve(decl.name)
		if err != nil {
			return nil, err
		}
		if _, err := d.Add(c); err != nil {
			return nil, fmt.Errorf("component %q: %w", decl.name, err)
		}
	}

	for _, c := range b.couplings {
		src, err := resolve(c.from.name)
		if err != nil {
			return nil, fmt.Errorf("coupling from %s:%d: %w", c.from.name, c.from.port, err)
		}
		if len(c.to) == 0 {
			return nil, fmt.Errorf("coupling from %s:%d has no destination", c.from.name, c.from.port)
		}
		for _, to := range c.to {
			dst, err := resolve(to.name)
			if err != nil {
				return nil, fmt.Errorf("coupling to %s:%d: %w", to.name, to.port, err)
			}
			for i := 0; i < c.times; i++ {
				if err := d.Couple(src, c.from.port, dst, to.port); err != nil {
					return nil, err
				}
			}
		}
	}
	return d, nil
}
