package snapshot_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/lattice/pkg/adapters/memory"
	"github.com/aretw0/lattice/pkg/adapters/redis"
	"github.com/aretw0/lattice/pkg/codec"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/model"
	"github.com/aretw0/lattice/pkg/network"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/aretw0/lattice/pkg/snapshot"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds() *registry.Registry {
	r := registry.NewRegistry()
	model.RegisterKinds(r)
	network.RegisterKinds(r)
	return r
}

// SlowStore simulates latency to provoke races if locking is missing.
type SlowStore struct {
	ports.SnapshotStore
}

func (s *SlowStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	time.Sleep(5 * time.Millisecond)
	return s.SnapshotStore.Save(ctx, snap)
}

func (s *SlowStore) Load(ctx context.Context, id string) (*domain.Snapshot, error) {
	time.Sleep(5 * time.Millisecond)
	return s.SnapshotStore.Load(ctx, id)
}

func TestManager_SaveAndLoad(t *testing.T) {
	for _, format := range []string{codec.FormatJSON, codec.FormatYAML, codec.FormatCompact} {
		t.Run(format, func(t *testing.T) {
			c, err := codec.ByFormat(format)
			require.NoError(t, err)
			store := memory.NewStore()
			mgr := snapshot.NewManager(store, kinds(), snapshot.WithCodec(c))
			ctx := context.Background()

			d := network.New()
			a, b := model.NewAtomic("a"), model.NewAtomic("b")
			require.NoError(t, d.Couple(d, 0, a, 0))
			require.NoError(t, d.Couple(a, 0, b, 0))
			require.NoError(t, d.Couple(a, 0, b, 0))

			require.NoError(t, mgr.Save(ctx, "plant", d))

			raw, err := store.Load(ctx, "plant")
			require.NoError(t, err)
			assert.Equal(t, format, raw.Format)
			assert.False(t, raw.SavedAt.IsZero())

			loaded, err := mgr.LoadNetwork(ctx, "plant")
			require.NoError(t, err)
			in := loaded.Route(domain.NewPortValue(0, "go"), loaded)
			require.Len(t, in, 1)
			assert.Len(t, loaded.Route(domain.NewPortValue(0, "go"), in[0].Target), 2)
		})
	}
}

func TestManager_LoadUsesRecordedFormat(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	writer := snapshot.NewManager(store, kinds(), snapshot.WithCodec(codec.NewYAMLCodec()))
	require.NoError(t, writer.Save(ctx, "net", network.New()))

	reader := snapshot.NewManager(store, kinds())
	doc, err := reader.Document(ctx, "net")
	require.NoError(t, err)
	assert.Equal(t, network.KindDigraph, doc.Root.Kind)
}

func TestManager_LoadErrors(t *testing.T) {
	store := memory.NewStore()
	mgr := snapshot.NewManager(store, kinds())
	ctx := context.Background()

	_, err := mgr.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

	require.NoError(t, store.Save(ctx, &domain.Snapshot{ID: "odd", Format: "xml", Data: []byte("<x/>")}))
	_, err = mgr.Load(ctx, "odd")
	assert.ErrorContains(t, err, "unsupported format")

	require.NoError(t, mgr.Save(ctx, "simple", network.NewSimple()))
	_, err = mgr.LoadNetwork(ctx, "simple")
	assert.ErrorContains(t, err, "not a digraph")
}

func TestManager_UpdateSerializesWriters(t *testing.T) {
	store := &SlowStore{SnapshotStore: memory.NewStore()}
	mgr := snapshot.NewManager(store, kinds())
	ctx := context.Background()

	var wg sync.WaitGroup
	writers := 8
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := mgr.Update(ctx, "shared", func(d *network.Digraph) error {
				return d.Couple(d, 0, model.NewAtomic("w"), 0)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	d, err := mgr.LoadNetwork(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, d.Components(), writers, "no update may be lost")
	assert.Len(t, d.Route(domain.NewPortValue(0, nil), d), writers)
}

func TestManager_SaveNew(t *testing.T) {
	mgr := snapshot.NewManager(memory.NewStore(), kinds())
	ctx := context.Background()

	id, err := mgr.SaveNew(ctx, network.New())
	require.NoError(t, err)
	assert.Len(t, id, 36)

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids)
}

func TestManager_DistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	locker := redis.NewLocker(client, "test:")
	mgr := snapshot.NewManager(redis.NewFromClient(client), kinds(),
		snapshot.WithLocker(locker),
		snapshot.WithLockTTL(time.Second),
	)
	ctx := context.Background()

	err := mgr.WithLock(ctx, "net", func(ctx context.Context) error {
		assert.True(t, mr.Exists("test:lock:net"), "distributed lock held during fn")
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("test:lock:net"))

	require.NoError(t, mgr.Save(ctx, "net", network.New()))
	_, err = mgr.LoadNetwork(ctx, "net")
	require.NoError(t, err)
}
