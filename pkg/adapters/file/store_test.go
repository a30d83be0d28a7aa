package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/lattice/pkg/adapters/file"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_WritesEnvelope(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.Snapshot{ID: "net", Format: "yaml", Data: []byte("version: 1")}))

	raw, err := os.ReadFile(filepath.Join(dir, "net.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"format": "yaml"`)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not survive a successful save")
}

func TestFileStore_RejectsPathIDs(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "../escape", `a\b`, ".."} {
		assert.Error(t, store.Save(ctx, &domain.Snapshot{ID: id}), id)
		_, err := store.Load(ctx, id)
		assert.Error(t, err, id)
		assert.NotErrorIs(t, err, domain.ErrSnapshotNotFound, id)
	}
}

func TestFileStore_ListMissingDirectory(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "absent"))

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
