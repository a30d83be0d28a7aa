package network

import (
	"fmt"
	"slices"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/aretw0/lattice/pkg/schema"
)

const (
	// LevelNetwork is the level shared by every network flavour. It has no fields.
	LevelNetwork = "network"
	// LevelDigraph holds a Digraph's components and coupling graph.
	LevelDigraph = "digraph"
	// LevelSimple holds a Simple network's components and coupling graph.
	LevelSimple = "simple"
)

// RegisterKinds installs the factories of this package's networks.
func RegisterKinds(r *registry.Registry) {
	r.Register(KindDigraph, func() domain.Component { return New() })
	r.Register(KindSimple, func() domain.Component { return NewSimple() })
}

// Marshal encodes the document rooted at d.
func Marshal(d *Digraph) (*schema.Document, error) {
	return schema.Encode(d)
}

// Unmarshal decodes a document whose root is a Digraph.
func Unmarshal(doc *schema.Document, kinds *registry.Registry) (*Digraph, error) {
	c, err := schema.Decode(doc, kinds)
	if err != nil {
		return nil, err
	}
	d, ok := c.(*Digraph)
	if !ok {
		return nil, fmt.Errorf("document root is a %s, not a %s", c.Kind(), KindDigraph)
	}
	return d, nil
}

// marshalComponents emits one record per registered identity, in handle order,
// and returns the document ref assigned to each handle.
func (c *core) marshalComponents(w *schema.Writer) ([]schema.ComponentRecord, map[domain.Handle]int, error) {
	records := make([]schema.ComponentRecord, 0, c.registry.Len())
	refs := make(map[domain.Handle]int, c.registry.Len())

	for _, h := range c.registry.Handles() {
		comp, _ := c.registry.Component(h)
		rec, err := w.Component(comp)
		if err != nil {
			return nil, nil, err
		}
		records = append(records, rec)
		refs[h] = rec.Ref
	}
	return records, refs, nil
}

func componentRef(r domain.Ref, refs map[domain.Handle]int) (schema.ComponentRef, error) {
	h, owned := r.Handle()
	if !owned {
		return schema.SelfRef(), nil
	}
	ref, ok := refs[h]
	if !ok {
		return schema.ComponentRef{}, fmt.Errorf("handle %d: %w", h, domain.ErrComponentNotFound)
	}
	return schema.RefTo(ref), nil
}

// unmarshalComponents materializes and registers the component set. The first
// definition of a component makes this network its owner; a back-reference to
// a component defined elsewhere in the document makes it a co-owner.
func (c *core) unmarshalComponents(self domain.Component, r *schema.Reader, records []schema.ComponentRecord) (map[int]domain.Component, error) {
	local := make(map[int]domain.Component, len(records))
	for _, rec := range records {
		if _, dup := local[rec.Ref]; dup {
			return nil, &domain.CorruptGraphError{Ref: rec.Ref, Reason: "listed twice in component set"}
		}

		comp, fresh, err := r.Component(rec)
		if err != nil {
			return nil, err
		}
		if comp == self {
			return nil, &domain.CorruptGraphError{Ref: rec.Ref, Reason: "network lists itself as a component"}
		}

		local[rec.Ref] = comp
		add := c.registry.AddShared
		if fresh {
			add = c.registry.Add
		}
		if _, err := add(comp); err != nil {
			return nil, fmt.Errorf("component ref %d: %w", rec.Ref, err)
		}
	}
	return local, nil
}

func resolveRecord(self domain.Component, ref schema.ComponentRef, local map[int]domain.Component) (domain.Component, error) {
	if !ref.Valid() {
		return nil, &domain.CorruptGraphError{Ref: ref.Ref(), Reason: "missing component reference"}
	}
	if ref.IsSelf() {
		return self, nil
	}
	comp, ok := local[ref.Ref()]
	if !ok {
		return nil, &domain.CorruptGraphError{Ref: ref.Ref(), Reason: "not in the loaded component set"}
	}
	return comp, nil
}

func (c *core) reset() {
	c.registry = NewRegistry()
}

// MarshalChain writes the devs, network and digraph levels. The component set
// is emitted before the graph, whose nodes reference it by document ref.
func (d *Digraph) MarshalChain(w *schema.Writer) error {
	if err := d.Base.MarshalChain(w); err != nil {
		return err
	}
	w.Level(LevelNetwork, nil)

	components, refs, err := d.marshalComponents(w)
	if err != nil {
		return err
	}

	graph := make([]schema.CouplingRecord, 0, len(d.graph))
	for _, from := range d.sources() {
		src, err := componentRef(from.Ref, refs)
		if err != nil {
			return err
		}
		rec := schema.CouplingRecord{From: schema.NodeRecord{Component: src, Port: from.Port}}
		for _, to := range d.graph[from] {
			dst, err := componentRef(to.Ref, refs)
			if err != nil {
				return err
			}
			rec.To = append(rec.To, schema.NodeRecord{Component: dst, Port: to.Port})
		}
		graph = append(graph, rec)
	}

	w.Append(schema.Layer{Level: LevelDigraph, Components: components, Graph: graph})
	d.logger.Debug("marshaled", "components", len(components), "sources", len(graph))
	return nil
}

// UnmarshalChain rebuilds the network: components are materialized and
// registered first, then every stored occurrence of every coupling is replayed
// through Couple.
func (d *Digraph) UnmarshalChain(r *schema.Reader) error {
	if err := d.Base.UnmarshalChain(r); err != nil {
		return err
	}
	if _, err := r.Level(LevelNetwork, nil); err != nil {
		return err
	}
	layer, err := r.Level(LevelDigraph, nil)
	if err != nil {
		return err
	}

	d.reset()
	d.graph = make(map[domain.Node][]domain.Node)

	local, err := d.unmarshalComponents(d, r, layer.Components)
	if err != nil {
		return err
	}

	couplings := 0
	for _, rec := range layer.Graph {
		src, err := resolveRecord(d, rec.From.Component, local)
		if err != nil {
			return err
		}
		for _, to := range rec.To {
			dst, err := resolveRecord(d, to.Component, local)
			if err != nil {
				return err
			}
			if err := d.Couple(src, rec.From.Port, dst, to.Port); err != nil {
				return err
			}
			couplings++
		}
	}

	d.logger.Debug("unmarshaled", "components", len(local), "couplings", couplings)
	return nil
}

// MarshalChain writes the devs, network and simple levels.
func (s *Simple) MarshalChain(w *schema.Writer) error {
	if err := s.Base.MarshalChain(w); err != nil {
		return err
	}
	w.Level(LevelNetwork, nil)

	components, refs, err := s.marshalComponents(w)
	if err != nil {
		return err
	}

	sources := make([]domain.Ref, 0, len(s.graph))
	for from := range s.graph {
		sources = append(sources, from)
	}
	slices.SortFunc(sources, domain.Ref.Compare)

	graph := make([]schema.CouplingRecord, 0, len(sources))
	for _, from := range sources {
		src, err := componentRef(from, refs)
		if err != nil {
			return err
		}
		rec := schema.CouplingRecord{From: schema.NodeRecord{Component: src}}
		for _, to := range s.graph[from] {
			dst, err := componentRef(to, refs)
			if err != nil {
				return err
			}
			rec.To = append(rec.To, schema.NodeRecord{Component: dst})
		}
		graph = append(graph, rec)
	}

	w.Append(schema.Layer{Level: LevelSimple, Components: components, Graph: graph})
	return nil
}

// UnmarshalChain rebuilds a Simple network the same way a Digraph is rebuilt.
func (s *Simple) UnmarshalChain(r *schema.Reader) error {
	if err := s.Base.UnmarshalChain(r); err != nil {
		return err
	}
	if _, err := r.Level(LevelNetwork, nil); err != nil {
		return err
	}
	layer, err := r.Level(LevelSimple, nil)
	if err != nil {
		return err
	}

	s.reset()
	s.graph = make(map[domain.Ref][]domain.Ref)

	local, err := s.unmarshalComponents(s, r, layer.Components)
	if err != nil {
		return err
	}

	for _, rec := range layer.Graph {
		src, err := resolveRecord(s, rec.From.Component, local)
		if err != nil {
			return err
		}
		for _, to := range rec.To {
			dst, err := resolveRecord(s, to.Component, local)
			if err != nil {
				return err
			}
			if err := s.Couple(src, dst); err != nil {
				return err
			}
		}
	}
	return nil
}
