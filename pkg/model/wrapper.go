package model

import (
	"fmt"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/schema"
)

const (
	// KindWrapper is the registered kind of a Wrapper.
	KindWrapper = "wrapper"
	// LevelWrapper is the level name written by Wrapper.
	LevelWrapper = "wrapper"
)

type wrapperFields struct {
	TimeLast float64 `json:"time_last" yaml:"time_last"`
}

// Wrapper adapts a model with a different interface so it can take part in a
// network. It is an atomic component that also persists the time of its last
// event and the wrapped model.
type Wrapper struct {
	Atomic
	TimeLast float64 `json:"time_last"`
	wrapped  domain.Component
}

// NewWrapper wraps c.
func NewWrapper(c domain.Component) *Wrapper {
	return &Wrapper{wrapped: c}
}

// Kind implements domain.Component.
func (w *Wrapper) Kind() string {
	return KindWrapper
}

// Wrapped returns the wrapped model, or nil.
func (w *Wrapper) Wrapped() domain.Component {
	return w.wrapped
}

// SetWrapped replaces the wrapped model.
func (w *Wrapper) SetWrapped(c domain.Component) {
	w.wrapped = c
}

// MarshalChain writes the atomic chain followed by the wrapper level, whose
// single child is the wrapped model.
func (w *Wrapper) MarshalChain(sw *schema.Writer) error {
	if err := w.Atomic.MarshalChain(sw); err != nil {
		return err
	}

	layer := schema.Layer{
		Level:  LevelWrapper,
		Fields: wrapperFields{TimeLast: w.TimeLast},
	}
	if w.wrapped != nil {
		rec, err := sw.Component(w.wrapped)
		if err != nil {
			return fmt.Errorf("wrapped model: %w", err)
		}
		layer.Components = []schema.ComponentRecord{rec}
	}
	sw.Append(layer)
	return nil
}

// UnmarshalChain consumes the atomic chain followed by the wrapper level.
func (w *Wrapper) UnmarshalChain(r *schema.Reader) error {
	if err := w.Atomic.UnmarshalChain(r); err != nil {
		return err
	}

	var f wrapperFields
	layer, err := r.Level(LevelWrapper, &f)
	if err != nil {
		return err
	}
	w.TimeLast = f.TimeLast

	switch len(layer.Components) {
	case 0:
		w.wrapped = nil
	case 1:
		c, _, err := r.Component(layer.Components[0])
		if err != nil {
			return fmt.Errorf("wrapped model: %w", err)
		}
		w.wrapped = c
	default:
		return fmt.Errorf("%w: wrapper holds %d models", domain.ErrChainMismatch, len(layer.Components))
	}
	return nil
}
