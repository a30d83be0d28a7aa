package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/lattice/internal/config"
	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/model"
	"github.com/aretw0/lattice/pkg/network"
	"github.com/aretw0/lattice/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleNetwork(t *testing.T) *network.Digraph {
	t.Helper()
	d := network.New()
	require.NoError(t, d.Couple(d, 0, model.NewAtomic("a"), 0))
	return d
}

func TestNewEnvironment_Drivers(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := t.TempDir()

	drivers := map[string]config.Store{
		config.DriverMemory: {Driver: config.DriverMemory},
		config.DriverFile:   {Driver: config.DriverFile, Path: filepath.Join(dir, "snapshots")},
		config.DriverSQLite: {Driver: config.DriverSQLite, Path: filepath.Join(dir, "lattice.db")},
		config.DriverRedis:  {Driver: config.DriverRedis, Addr: mr.Addr(), Lock: true, Prefix: "t:"},
	}
	for name, store := range drivers {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Store = store
			cfg.Format = "compact"

			env, err := NewEnvironment(cfg, nil, logging.NewNop())
			require.NoError(t, err)
			defer env.Close()

			ctx := context.Background()
			require.NoError(t, env.Manager.Save(ctx, "net", sampleNetwork(t)))

			snap, err := env.Store.Load(ctx, "net")
			require.NoError(t, err)
			assert.Equal(t, "compact", snap.Format)

			d, err := env.Manager.LoadNetwork(ctx, "net")
			require.NoError(t, err)
			assert.Len(t, d.Components(), 1)
		})
	}
}

func TestNewEnvironment_EncryptionAndMetrics(t *testing.T) {
	cfg := config.Default()
	cfg.Store = config.Store{Driver: config.DriverFile, Path: t.TempDir()}
	cfg.Encryption.Key = strings.Repeat("42", 32)

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	env, err := NewEnvironment(cfg, metrics, logging.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, env.Manager.Save(ctx, "secret", sampleNetwork(t)))

	_, err = env.Manager.LoadNetwork(ctx, "secret")
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.StoreOpsTotal.WithLabelValues("save", "ok")))

	_, err = env.Store.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

	plain := cfg
	plain.Encryption.Key = ""
	raw, err := NewEnvironment(plain, nil, logging.NewNop())
	require.NoError(t, err)

	snap, err := raw.Store.Load(ctx, "secret")
	require.NoError(t, err)
	assert.True(t, snap.Encrypted, "sealed at rest")
	assert.NotContains(t, string(snap.Data), "atomic")
}

func TestNewEnvironment_Errors(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = "etcd"
	_, err := NewEnvironment(cfg, nil, logging.NewNop())
	assert.Error(t, err)

	cfg = config.Default()
	cfg.Store = config.Store{Driver: config.DriverMemory}
	cfg.Format = "xml"
	_, err = NewEnvironment(cfg, nil, logging.NewNop())
	assert.Error(t, err)
}
