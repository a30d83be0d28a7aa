package loader

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/dsl"
	"github.com/aretw0/lattice/pkg/model"
	"github.com/aretw0/lattice/pkg/network"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/aretw0/lattice/pkg/schema"
	"gopkg.in/yaml.v3"
)

type labeler interface {
	SetLabel(string)
}

type wrapper interface {
	SetWrapped(domain.Component)
}

// Loader builds networks from YAML blueprints.
type Loader struct {
	kinds  *registry.Registry
	logger *slog.Logger
	opts   []network.Option
}

// Option configures the Loader.
type Option func(*Loader)

// WithLogger sets the loader's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithNetworkOptions configures every network the loader builds.
func WithNetworkOptions(opts ...network.Option) Option {
	return func(l *Loader) {
		l.opts = append(l.opts, opts...)
	}
}

// New creates a Loader materializing components through kinds.
func New(kinds *registry.Registry, opts ...Option) *Loader {
	l := &Loader{
		kinds:  kinds,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile reads and builds the blueprint at path.
func (l *Loader) LoadFile(path string) (*network.Digraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open blueprint: %w", err)
	}
	defer f.Close()
	return l.Load(f)
}

// Load parses a YAML blueprint and builds it.
func (l *Loader) Load(r io.Reader) (*network.Digraph, error) {
	var bp Blueprint
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&bp); err != nil {
		return nil, fmt.Errorf("failed to parse blueprint: %w", err)
	}
	return l.Build(&bp)
}

// Build creates the network described by bp.
func (l *Loader) Build(bp *Blueprint) (*network.Digraph, error) {
	b := dsl.New(l.opts...)

	for _, spec := range bp.Components {
		spec := spec
		b.Define(spec.Name, func(resolve dsl.Resolver) (domain.Component, error) {
			return l.component(spec, resolve)
		})
	}

	for _, cs := range bp.Couplings {
		name, port, err := ParseEndpoint(cs.From)
		if err != nil {
			return nil, err
		}
		cb := b.Connect(name, port)
		for _, to := range cs.To {
			toName, toPort, err := ParseEndpoint(to)
			if err != nil {
				return nil, err
			}
			cb.To(toName, toPort)
		}
		if cs.Times != 0 {
			cb.Times(cs.Times)
		}
	}

	d, err := b.Build()
	if err != nil {
		return nil, err
	}
	l.logger.Debug("blueprint built", "components", len(bp.Components), "couplings", len(bp.Couplings))
	return d, nil
}

func (l *Loader) component(spec ComponentSpec, resolve dsl.Resolver) (domain.Component, error) {
	kind := spec.Kind
	if kind == "" {
		kind = model.KindAtomic
	}

	if spec.Network != nil {
		if kind != network.KindDigraph {
			return nil, fmt.Errorf("component %q: only %s components take a nested network", spec.Name, network.KindDigraph)
		}
		d, err := l.Build(spec.Network)
		if err != nil {
			return nil, fmt.Errorf("network %q: %w", spec.Name, err)
		}
		return d, nil
	}

	c, err := l.kinds.New(kind)
	if err != nil {
		return nil, fmt.Errorf("component %q: %w", spec.Name, err)
	}
	if lb, ok := c.(labeler); ok {
		lb.SetLabel(spec.Name)
	}

	if len(spec.Params) > 0 {
		if err := schema.DecodeFields(spec.Params, c); err != nil {
			return nil, fmt.Errorf("component %q params: %w", spec.Name, err)
		}
	}

	if spec.Wraps != "" {
		w, ok := c.(wrapper)
		if !ok {
			return nil, fmt.Errorf("component %q: kind %s cannot wrap a model", spec.Name, kind)
		}
		target, err := resolve(spec.Wraps)
		if err != nil {
			return nil, fmt.Errorf("component %q: %w", spec.Name, err)
		}
		w.SetWrapped(target)
	}
	return c, nil
}
