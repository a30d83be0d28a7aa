package network

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/lattice/pkg/domain"
)

// KindDigraph is the registered kind of a Digraph.
const KindDigraph = "digraph"

// Endpoint is a graph node resolved to its live component.
type Endpoint struct {
	Component domain.Component
	Port      domain.Port
	Boundary  bool
}

// Coupling is one source endpoint and the multiset of its destinations.
type Coupling struct {
	From Endpoint
	To   []Endpoint
}

// Digraph is a network whose components exchange PortValues over couplings
// between (component, port) nodes.
// It is not safe for concurrent use.
type Digraph struct {
	core
	graph map[domain.Node][]domain.Node
}

// New creates a network with no components.
func New(opts ...Option) *Digraph {
	d := &Digraph{graph: make(map[domain.Node][]domain.Node)}
	d.core = newCore(d, KindDigraph, opts)
	return d
}

// Kind implements domain.Component.
func (d *Digraph) Kind() string {
	return KindDigraph
}

// Couple wires (src, srcPort) to (dst, dstPort). Components other than the
// network itself are registered on the way. Each call adds one occurrence, so
// repeating a coupling increases its delivery multiplicity.
func (d *Digraph) Couple(src domain.Component, srcPort domain.Port, dst domain.Component, dstPort domain.Port) error {
	if err := d.checkEndpoints(src, dst); err != nil {
		return fmt.Errorf("couple: %w", err)
	}

	srcRef, err := d.ref(d, src)
	if err != nil {
		return fmt.Errorf("couple: %w", err)
	}
	dstRef, err := d.ref(d, dst)
	if err != nil {
		return fmt.Errorf("couple: %w", err)
	}

	from := domain.Node{Ref: srcRef, Port: srcPort}
	to := domain.Node{Ref: dstRef, Port: dstPort}
	d.graph[from] = append(d.graph[from], to)

	d.logger.Debug("coupled", "from", from.String(), "to", to.String(), "multiplicity", d.count(from, to))
	if d.hooks.OnCouple != nil {
		d.hooks.OnCouple(from, to)
	}
	return nil
}

// Route synthesizes one delivery per destination coupled to (src, pv.Port),
// in the stored multiplicity. An unwired source yields no events.
func (d *Digraph) Route(pv domain.PortValue, src domain.Component) []domain.Event {
	ref, ok := d.lookupRef(d, src)
	if !ok {
		return nil
	}
	from := domain.Node{Ref: ref, Port: pv.Port}

	dsts, ok := d.graph[from]
	if !ok {
		d.notifyRoute(from, 0)
		return nil
	}

	events := make([]domain.Event, 0, len(dsts))
	for _, to := range dsts {
		target, ok := d.resolve(d, to.Ref)
		if !ok {
			d.logger.Warn("dropping delivery to unresolved node", "to", to.String())
			continue
		}
		events = append(events, domain.Event{
			Target: target,
			Value:  domain.PortValue{Port: to.Port, Value: pv.Value},
		})
	}

	d.notifyRoute(from, len(events))
	return events
}

func (d *Digraph) notifyRoute(from domain.Node, deliveries int) {
	if d.hooks.OnRoute != nil {
		d.hooks.OnRoute(from, deliveries)
	}
}

// Multiplicity returns how many times (src, srcPort) is coupled to (dst, dstPort).
func (d *Digraph) Multiplicity(src domain.Component, srcPort domain.Port, dst domain.Component, dstPort domain.Port) int {
	fromRef, ok := d.lookupRef(d, src)
	if !ok {
		return 0
	}
	toRef, ok := d.lookupRef(d, dst)
	if !ok {
		return 0
	}
	return d.count(domain.Node{Ref: fromRef, Port: srcPort}, domain.Node{Ref: toRef, Port: dstPort})
}

func (d *Digraph) count(from, to domain.Node) int {
	n := 0
	for _, dst := range d.graph[from] {
		if dst == to {
			n++
		}
	}
	return n
}

// Graph returns the couplings with every node resolved to the component the
// registry holds now. Sources are ordered by (handle, port) with the boundary
// first; destinations keep coupling order.
func (d *Digraph) Graph() []Coupling {
	out := make([]Coupling, 0, len(d.graph))
	for _, from := range d.sources() {
		c := Coupling{From: d.endpoint(from)}
		for _, to := range d.graph[from] {
			c.To = append(c.To, d.endpoint(to))
		}
		out = append(out, c)
	}
	return out
}

func (d *Digraph) endpoint(n domain.Node) Endpoint {
	comp, _ := d.resolve(d, n.Ref)
	return Endpoint{Component: comp, Port: n.Port, Boundary: n.Ref.IsBoundary()}
}

func (d *Digraph) sources() []domain.Node {
	nodes := make([]domain.Node, 0, len(d.graph))
	for n := range d.graph {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, domain.Node.Compare)
	return nodes
}

// Close releases every owned component and drops the couplings, whose handles
// would otherwise be reused by later registrations.
func (d *Digraph) Close() error {
	clear(d.graph)
	return d.registry.Release()
}

// Validate checks that every component referenced by the graph is registered.
func (d *Digraph) Validate() error {
	var errs []error
	check := func(n domain.Node) {
		if _, ok := d.resolve(d, n.Ref); !ok {
			errs = append(errs, fmt.Errorf("node %s: %w", n, domain.ErrComponentNotFound))
		}
	}
	for _, from := range d.sources() {
		check(from)
		for _, to := range d.graph[from] {
			check(to)
		}
	}
	return errors.Join(errs...)
}
