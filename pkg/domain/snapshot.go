package domain

import "time"

// Snapshot is an encoded network document as persisted by a snapshot store.
type Snapshot struct {
	ID        string    `json:"id"`
	Format    string    `json:"format"`
	Data      []byte    `json:"data"`
	Encrypted bool      `json:"encrypted,omitempty"`
	SavedAt   time.Time `json:"saved_at"`
}
