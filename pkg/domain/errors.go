package domain

import (
	"errors"
	"fmt"
)

// ErrComponentNotFound is returned when a component reference cannot be resolved.
var ErrComponentNotFound = errors.New("component not found")

// ErrInvalidComponent is returned when a component cannot be registered: it is
// nil, it is not a pointer, or it is the network it would be registered in.
var ErrInvalidComponent = errors.New("invalid component")

// ErrUnknownKind is returned when no factory is registered for a component kind.
var ErrUnknownKind = errors.New("unknown component kind")

// ErrNotPersistent is returned when a component cannot take part in serialization.
var ErrNotPersistent = errors.New("component is not persistent")

// ErrChainMismatch is returned when a serialized level chain does not match the
// levels a component expects.
var ErrChainMismatch = errors.New("level chain mismatch")

// ErrSnapshotNotFound is returned when a snapshot ID cannot be found in the store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// CorruptGraphError reports a structurally invalid document: a graph edge or a
// back-reference that cannot be resolved against the components already loaded.
type CorruptGraphError struct {
	Ref    int
	Reason string
}

func (e *CorruptGraphError) Error() string {
	if e.Ref == 0 {
		return fmt.Sprintf("corrupt graph: %s", e.Reason)
	}
	return fmt.Sprintf("corrupt graph: ref %d: %s", e.Ref, e.Reason)
}

// IsCorruptGraph reports whether err is or wraps a CorruptGraphError.
func IsCorruptGraph(err error) bool {
	var target *CorruptGraphError
	return errors.As(err, &target)
}
