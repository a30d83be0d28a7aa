package domain

// Component is a participant of a coupled network.
// A component may itself be a network (recursive composition).
//
// Identity is pointer identity: implementations must be pointer types so that
// the same instance is recognised wherever it is referenced.
type Component interface {
	// Kind names the registered factory able to materialize this component.
	Kind() string
}

// Ownership describes how a registry holds a component.
type Ownership int

const (
	// Exclusive means the registry is the sole owner of the component.
	Exclusive Ownership = iota
	// Shared means the registry is one of possibly several co-owners.
	Shared
)

func (o Ownership) String() string {
	if o == Shared {
		return "shared"
	}
	return "exclusive"
}

// RefCounted is implemented by components that track how many owners hold them.
// Release reports true when the last holder let go.
type RefCounted interface {
	Retain()
	Release() bool
}

// Labeled is implemented by components that carry a human readable name.
type Labeled interface {
	Label() string
}
