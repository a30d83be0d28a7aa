package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// SelfToken is the wire value of the boundary sentinel.
const SelfToken = "self"

// ComponentRef points a graph node at a component record or at the enclosing
// network's boundary. The zero value is invalid: it is what an absent or null
// reference decodes to, and it never means "self".
type ComponentRef struct {
	self bool
	ref  int
}

// SelfRef returns the boundary sentinel.
func SelfRef() ComponentRef {
	return ComponentRef{self: true}
}

// RefTo returns a reference to the component record with the given ref.
func RefTo(ref int) ComponentRef {
	return ComponentRef{ref: ref}
}

// IsSelf reports whether r is the boundary sentinel.
func (r ComponentRef) IsSelf() bool {
	return r.self
}

// Ref returns the referenced record ref, zero for the sentinel.
func (r ComponentRef) Ref() int {
	return r.ref
}

// Valid reports whether r is the sentinel or a positive ref.
func (r ComponentRef) Valid() bool {
	return r.self || r.ref > 0
}

func (r ComponentRef) String() string {
	if r.self {
		return SelfToken
	}
	if r.ref <= 0 {
		return "<none>"
	}
	return strconv.Itoa(r.ref)
}

var errInvalidRef = errors.New("invalid component reference")

// MarshalJSON writes "self" or the integer ref.
func (r ComponentRef) MarshalJSON() ([]byte, error) {
	if r.self {
		return json.Marshal(SelfToken)
	}
	if r.ref <= 0 {
		return nil, errInvalidRef
	}
	return json.Marshal(r.ref)
}

// UnmarshalJSON accepts "self" or an integer. null leaves r invalid so the
// loader can report it as a corrupt graph.
func (r *ComponentRef) UnmarshalJSON(data []byte) error {
	*r = ComponentRef{}
	if string(data) == "null" {
		return nil
	}

	var token string
	if err := json.Unmarshal(data, &token); err == nil {
		return r.parse(token)
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("component reference: %w", err)
	}
	r.ref = n
	return nil
}

// MarshalYAML writes "self" or the integer ref.
func (r ComponentRef) MarshalYAML() (any, error) {
	if r.self {
		return SelfToken, nil
	}
	if r.ref <= 0 {
		return nil, errInvalidRef
	}
	return r.ref, nil
}

// UnmarshalYAML accepts "self" or an integer scalar.
func (r *ComponentRef) UnmarshalYAML(node *yaml.Node) error {
	*r = ComponentRef{}
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("component reference: expected scalar at line %d", node.Line)
	}
	if node.Tag == "!!null" {
		return nil
	}
	return r.parse(node.Value)
}

func (r *ComponentRef) parse(token string) error {
	if token == SelfToken {
		r.self = true
		return nil
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return fmt.Errorf("component reference %q: %w", token, errInvalidRef)
	}
	r.ref = n
	return nil
}
