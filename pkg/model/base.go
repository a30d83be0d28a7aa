package model

import "github.com/aretw0/lattice/pkg/schema"

// LevelBase is the level name of the generic component level.
const LevelBase = "devs"

// Base is the root level shared by every component. It has no persistent
// fields.
type Base struct {
	RefCount
}

// MarshalChain writes the (empty) base level.
func (b *Base) MarshalChain(w *schema.Writer) error {
	w.Level(LevelBase, nil)
	return nil
}

// UnmarshalChain consumes the base level.
func (b *Base) UnmarshalChain(r *schema.Reader) error {
	_, err := r.Level(LevelBase, nil)
	return err
}
