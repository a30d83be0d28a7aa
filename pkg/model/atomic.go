package model

import "github.com/aretw0/lattice/pkg/schema"

const (
	// KindAtomic is the registered kind of a plain Atomic component.
	KindAtomic = "atomic"
	// LevelAtomic is the level name written by Atomic.
	LevelAtomic = "atomic"
)

type atomicFields struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Atomic is a leaf component. Its only persistent state is an optional name.
type Atomic struct {
	Base
	Name string `json:"name"`
}

// NewAtomic creates a named Atomic component.
func NewAtomic(name string) *Atomic {
	return &Atomic{Name: name}
}

// Kind implements domain.Component.
func (a *Atomic) Kind() string {
	return KindAtomic
}

// Label returns the component name.
func (a *Atomic) Label() string {
	return a.Name
}

// SetLabel sets the component name.
func (a *Atomic) SetLabel(name string) {
	a.Name = name
}

// MarshalChain writes the base level followed by the atomic level.
func (a *Atomic) MarshalChain(w *schema.Writer) error {
	if err := a.Base.MarshalChain(w); err != nil {
		return err
	}
	w.Level(LevelAtomic, atomicFields{Name: a.Name})
	return nil
}

// UnmarshalChain consumes the base level followed by the atomic level.
func (a *Atomic) UnmarshalChain(r *schema.Reader) error {
	if err := a.Base.UnmarshalChain(r); err != nil {
		return err
	}
	var f atomicFields
	if _, err := r.Level(LevelAtomic, &f); err != nil {
		return err
	}
	a.Name = f.Name
	return nil
}
