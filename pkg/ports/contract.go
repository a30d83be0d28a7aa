package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	id := "contract-" + time.Now().Format("20060102150405")

	newSnapshot := func(id string, data string) *domain.Snapshot {
		return &domain.Snapshot{
			ID:      id,
			Format:  "json",
			Data:    []byte(data),
			SavedAt: time.Now().UTC().Truncate(time.Second),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		snap := newSnapshot(id, `{"version":1}`)
		require.NoError(t, store.Save(ctx, snap), "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, id, loaded.ID)
		assert.Equal(t, "json", loaded.Format)
		assert.Equal(t, snap.Data, loaded.Data)
		assert.False(t, loaded.Encrypted)
		assert.True(t, snap.SavedAt.Equal(loaded.SavedAt), "saved_at %v != %v", snap.SavedAt, loaded.SavedAt)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, newSnapshot(id, "first")))
		require.NoError(t, store.Save(ctx, newSnapshot(id, "second")))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), loaded.Data)
	})

	t.Run("Load Returns Copy", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, newSnapshot(id, "stable")))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		loaded.Data[0] = 'X'

		again, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []byte("stable"), again.Data)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, newSnapshot(id, "doomed")))

		require.NoError(t, store.Delete(ctx, id), "Delete should not return error")

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")

		assert.NoError(t, store.Delete(ctx, id), "Delete of a missing snapshot is a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := id + "-1"
		id2 := id + "-2"
		require.NoError(t, store.Save(ctx, newSnapshot(id1, "one")))
		require.NoError(t, store.Save(ctx, newSnapshot(id2, "two")))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
