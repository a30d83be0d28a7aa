package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/lattice/pkg/domain"
)

// Store implements ports.SnapshotStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Snapshot
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Snapshot),
	}
}

// Save persists a copy of the snapshot in memory.
func (s *Store) Save(ctx context.Context, snap *domain.Snapshot) error {
	stored := clone(snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[snap.ID] = stored
	return nil
}

// Load returns a copy so callers can't mutate the stored bytes.
func (s *Store) Load(ctx context.Context, id string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[id]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return clone(snap), nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the stored snapshot IDs in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func clone(snap *domain.Snapshot) *domain.Snapshot {
	c := *snap
	c.Data = append([]byte(nil), snap.Data...)
	return &c
}
