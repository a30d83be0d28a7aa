package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/lattice/pkg/adapters/memory"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/observability"
	"github.com/aretw0/lattice/pkg/persistence/middleware"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddleware_Contract(t *testing.T) {
	m := observability.NewMetrics(nil)
	ports.RunSnapshotStoreContract(t, middleware.NewMetricsMiddleware(m)(memory.NewStore()))
}

func TestMetricsMiddleware_RecordsResults(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	store := middleware.NewMetricsMiddleware(m)(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.Snapshot{ID: "net"}))
	_, err := store.Load(ctx, "net")
	require.NoError(t, err)
	_, err = store.Load(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrSnapshotNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOpsTotal.WithLabelValues("save", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOpsTotal.WithLabelValues("load", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOpsTotal.WithLabelValues("load", "not_found")))

	count, err := testutil.GatherAndCount(reg, "lattice_store_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one histogram series per op")
}

func TestChain_OrderIsOutermostFirst(t *testing.T) {
	m := observability.NewMetrics(nil)
	underlying := memory.NewStore()
	key := generateKey(t)
	store := middleware.Chain(underlying,
		middleware.NewMetricsMiddleware(m),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.Snapshot{ID: "net", Data: []byte("plain")}))

	raw, err := underlying.Load(ctx, "net")
	require.NoError(t, err)
	assert.True(t, raw.Encrypted)

	loaded, err := store.Load(ctx, "net")
	require.NoError(t, err)
	assert.Equal(t, []byte("plain"), loaded.Data)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOpsTotal.WithLabelValues("save", "ok")))
}
