package network_test

import (
	"errors"
	"fmt"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/model"
	"github.com/aretw0/lattice/pkg/network"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/aretw0/lattice/pkg/schema"
)

// counter extends the atomic level chain with a level of its own.
type counter struct {
	model.Atomic
	Count int
	Step  float64
}

type counterFields struct {
	Count int     `json:"count" yaml:"count"`
	Step  float64 `json:"step,omitempty" yaml:"step,omitempty"`
}

func newCounter(name string, count int) *counter {
	c := &counter{Count: count}
	c.Name = name
	return c
}

func (c *counter) Kind() string { return "counter" }

func (c *counter) MarshalChain(w *schema.Writer) error {
	if err := c.Atomic.MarshalChain(w); err != nil {
		return err
	}
	w.Level("counter", counterFields{Count: c.Count, Step: c.Step})
	return nil
}

func (c *counter) UnmarshalChain(r *schema.Reader) error {
	if err := c.Atomic.UnmarshalChain(r); err != nil {
		return err
	}
	var f counterFields
	if _, err := r.Level("counter", &f); err != nil {
		return err
	}
	c.Count, c.Step = f.Count, f.Step
	return nil
}

// closer records how often it was closed. It is reference counted through
// the embedded atomic level.
type closer struct {
	model.Atomic
	closed int
}

func (c *closer) Kind() string { return "closer" }

func (c *closer) Close() error {
	c.closed++
	return nil
}

// plainCloser is a closable component without reference counting.
type plainCloser struct {
	closed int
	err    error
}

func (p *plainCloser) Kind() string { return "plain" }

func (p *plainCloser) Close() error {
	p.closed++
	return p.err
}

var errCloseFailed = errors.New("close failed")

// valueComponent is a non-pointer component whose type cannot key a map.
type valueComponent struct {
	tags []string
}

func (v valueComponent) Kind() string { return "value" }

func testKinds() *registry.Registry {
	kinds := registry.NewRegistry()
	model.RegisterKinds(kinds)
	network.RegisterKinds(kinds)
	kinds.Register("counter", func() domain.Component { return &counter{} })
	return kinds
}

func roundTrip(d *network.Digraph) (*network.Digraph, error) {
	doc, err := network.Marshal(d)
	if err != nil {
		return nil, err
	}
	return network.Unmarshal(doc, testKinds())
}

// describe renders an endpoint by label so topologies of different instances
// can be compared.
func describe(e network.Endpoint) string {
	if e.Boundary {
		return fmt.Sprintf("self:%d", e.Port)
	}
	if l, ok := e.Component.(domain.Labeled); ok {
		return fmt.Sprintf("%s:%d", l.Label(), e.Port)
	}
	return fmt.Sprintf("%s:%d", e.Component.Kind(), e.Port)
}

func topology(g []network.Coupling) []string {
	var out []string
	for _, c := range g {
		for _, to := range c.To {
			out = append(out, describe(c.From)+"->"+describe(to))
		}
	}
	return out
}
