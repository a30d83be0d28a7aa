package ports

import (
	"context"

	"github.com/aretw0/lattice/pkg/domain"
)

// SnapshotStore defines the interface for persisting encoded networks.
type SnapshotStore interface {
	// Save persists the snapshot under snap.ID, replacing any previous version.
	Save(ctx context.Context, snap *domain.Snapshot) error

	// Load retrieves the snapshot stored under id.
	// Returns domain.ErrSnapshotNotFound if it does not exist.
	Load(ctx context.Context, id string) (*domain.Snapshot, error)

	// Delete removes the snapshot. Deleting a missing snapshot is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of every stored snapshot.
	List(ctx context.Context) ([]string, error)
}
