package dsl

import (
	"fmt"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/network"
)

// CouplingBuilder provides a fluent API for configuring one coupling source.
type CouplingBuilder struct {
	builder  *Builder
	coupling *coupling
}

// To adds a destination. Calling To again fans the source out.
func (c *CouplingBuilder) To(name string, port domain.Port) *CouplingBuilder {
	c.coupling.to = append(c.coupling.to, endpoint{name: name, port: port})
	return c
}

// Times sets how many occurrences of each destination are coupled.
func (c *CouplingBuilder) Times(n int) *CouplingBuilder {
	if n < 1 {
		c.builder.errs = append(c.builder.errs, fmt.Errorf("coupling from %s:%d: times must be positive, got %d",
			c.coupling.from.name, c.coupling.from.port, n))
		return c
	}
	c.coupling.times = n
	return c
}

// Connect starts another coupling on the same builder.
func (c *CouplingBuilder) Connect(name string, port domain.Port) *CouplingBuilder {
	return c.builder.Connect(name, port)
}

// Build builds the network.
func (c *CouplingBuilder) Build() (*network.Digraph, error) {
	return c.builder.Build()
}
