package network

import (
	"fmt"
	"slices"

	"github.com/aretw0/lattice/pkg/domain"
)

// KindSimple is the registered kind of a Simple network.
const KindSimple = "simple"

// Simple is a portless network: components are coupled to components and every
// output of a source is delivered to each coupled destination.
// Deliveries carry the value on port zero.
type Simple struct {
	core
	graph map[domain.Ref][]domain.Ref
}

// NewSimple creates a portless network with no components.
func NewSimple(opts ...Option) *Simple {
	s := &Simple{graph: make(map[domain.Ref][]domain.Ref)}
	s.core = newCore(s, KindSimple, opts)
	return s
}

// Kind implements domain.Component.
func (s *Simple) Kind() string {
	return KindSimple
}

// Couple wires src to dst, registering components other than the network itself.
func (s *Simple) Couple(src, dst domain.Component) error {
	if err := s.checkEndpoints(src, dst); err != nil {
		return fmt.Errorf("couple: %w", err)
	}

	from, err := s.ref(s, src)
	if err != nil {
		return fmt.Errorf("couple: %w", err)
	}
	to, err := s.ref(s, dst)
	if err != nil {
		return fmt.Errorf("couple: %w", err)
	}
	s.graph[from] = append(s.graph[from], to)

	s.logger.Debug("coupled", "from", from.String(), "to", to.String())
	if s.hooks.OnCouple != nil {
		s.hooks.OnCouple(domain.Node{Ref: from}, domain.Node{Ref: to})
	}
	return nil
}

// Route synthesizes one delivery of value per destination coupled to src.
func (s *Simple) Route(value any, src domain.Component) []domain.Event {
	from, ok := s.lookupRef(s, src)
	if !ok {
		return nil
	}

	var events []domain.Event
	for _, to := range s.graph[from] {
		target, ok := s.resolve(s, to)
		if !ok {
			continue
		}
		events = append(events, domain.Event{Target: target, Value: domain.PortValue{Value: value}})
	}

	if s.hooks.OnRoute != nil {
		s.hooks.OnRoute(domain.Node{Ref: from}, len(events))
	}
	return events
}

// Graph returns the couplings resolved to live components, sources ordered by
// handle with the boundary first.
func (s *Simple) Graph() []Coupling {
	sources := make([]domain.Ref, 0, len(s.graph))
	for r := range s.graph {
		sources = append(sources, r)
	}
	slices.SortFunc(sources, domain.Ref.Compare)

	out := make([]Coupling, 0, len(sources))
	for _, from := range sources {
		c := Coupling{From: s.endpoint(from)}
		for _, to := range s.graph[from] {
			c.To = append(c.To, s.endpoint(to))
		}
		out = append(out, c)
	}
	return out
}

// Close releases every owned component and drops the couplings, whose handles
// would otherwise be reused by later registrations.
func (s *Simple) Close() error {
	clear(s.graph)
	return s.registry.Release()
}

func (s *Simple) endpoint(r domain.Ref) Endpoint {
	comp, _ := s.resolve(s, r)
	return Endpoint{Component: comp, Boundary: r.IsBoundary()}
}
