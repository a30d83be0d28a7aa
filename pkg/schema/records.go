package schema

import "github.com/aretw0/lattice/pkg/domain"

// Version is the document layout version written by Encode.
const Version = 1

// Document is the root of an encoded network.
type Document struct {
	Version int             `json:"version" yaml:"version"`
	Root    ComponentRecord `json:"root" yaml:"root"`
}

// ComponentRecord is either a definition (Kind set, Chain holding the level
// chain) or a back-reference to a definition emitted earlier (Ref only).
type ComponentRecord struct {
	Ref   int     `json:"ref" yaml:"ref"`
	Kind  string  `json:"kind,omitempty" yaml:"kind,omitempty"`
	Chain []Layer `json:"chain,omitempty" yaml:"chain,omitempty"`
}

// IsBackRef reports whether the record only points at an earlier definition.
func (c ComponentRecord) IsBackRef() bool {
	return c.Kind == ""
}

// Layer is one level of a component's type hierarchy.
// Network levels use Components and Graph; other levels may list child
// components they hold (e.g. a wrapped model).
type Layer struct {
	Level      string            `json:"level" yaml:"level"`
	Fields     any               `json:"fields,omitempty" yaml:"fields,omitempty"`
	Components []ComponentRecord `json:"components,omitempty" yaml:"components,omitempty"`
	Graph      []CouplingRecord  `json:"graph,omitempty" yaml:"graph,omitempty"`
}

// CouplingRecord maps one source node to the multiset of its destinations.
// A destination listed n times was coupled n times.
type CouplingRecord struct {
	From NodeRecord   `json:"from" yaml:"from"`
	To   []NodeRecord `json:"to" yaml:"to"`
}

// NodeRecord is an externally resolvable (component, port) pair.
type NodeRecord struct {
	Component ComponentRef `json:"component" yaml:"component"`
	Port      domain.Port  `json:"port" yaml:"port"`
}
