package domain

import (
	"cmp"
	"fmt"
)

// Handle is the stable arena index a registry assigns to a component.
type Handle int

// Ref is the tagged reference stored in a coupling graph: either the boundary of
// the enclosing network or a component owned by the network's registry.
// The zero Ref is the boundary.
type Ref struct {
	handle Handle
	owned  bool
}

// Boundary returns the reference to the enclosing network's own interface.
func Boundary() Ref {
	return Ref{}
}

// Owned returns a reference to the registry entry h.
func Owned(h Handle) Ref {
	return Ref{handle: h, owned: true}
}

// IsBoundary reports whether r refers to the enclosing network.
func (r Ref) IsBoundary() bool {
	return !r.owned
}

// Handle returns the registry handle, or false for the boundary.
func (r Ref) Handle() (Handle, bool) {
	return r.handle, r.owned
}

func (r Ref) String() string {
	if !r.owned {
		return "self"
	}
	return fmt.Sprintf("#%d", r.handle)
}

// Compare orders references with the boundary first, then by handle.
func (r Ref) Compare(other Ref) int {
	if r.owned != other.owned {
		if !r.owned {
			return -1
		}
		return 1
	}
	return cmp.Compare(r.handle, other.handle)
}

// Node is a (reference, port) pair of the coupling graph.
type Node struct {
	Ref  Ref
	Port Port
}

// Compare orders nodes by reference, then by port.
func (n Node) Compare(other Node) int {
	if c := n.Ref.Compare(other.Ref); c != 0 {
		return c
	}
	return cmp.Compare(n.Port, other.Port)
}

func (n Node) String() string {
	return fmt.Sprintf("%s:%d", n.Ref, n.Port)
}
