package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/config"
	"github.com/aretw0/lattice/pkg/adapters/file"
	"github.com/aretw0/lattice/pkg/adapters/memory"
	"github.com/aretw0/lattice/pkg/adapters/redis"
	"github.com/aretw0/lattice/pkg/adapters/sqlite"
	"github.com/aretw0/lattice/pkg/codec"
	"github.com/aretw0/lattice/pkg/observability"
	"github.com/aretw0/lattice/pkg/persistence/middleware"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/snapshot"
)

// Environment bundles what commands need to reach stored snapshots.
type Environment struct {
	Manager *snapshot.Manager
	Store   ports.SnapshotStore
	closers []io.Closer
}

// Close releases store connections.
func (e *Environment) Close() error {
	var errs []error
	for _, c := range e.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// NewEnvironment opens the configured store, wraps it with metrics and
// encryption and builds a snapshot manager over it. metrics may be nil.
func NewEnvironment(cfg config.Config, metrics *observability.Metrics, logger *slog.Logger) (*Environment, error) {
	env := &Environment{}

	base, err := openStore(cfg.Store, env)
	if err != nil {
		return nil, err
	}

	var mws []middleware.Middleware
	if metrics != nil {
		mws = append(mws, middleware.NewMetricsMiddleware(metrics))
	}
	if cfg.Encryption.Key != "" {
		active, fallback, err := cfg.Encryption.Keys()
		if err != nil {
			env.Close()
			return nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		}))
	}
	env.Store = middleware.Chain(base, mws...)

	c, err := codec.ByFormat(cfg.Format)
	if err != nil {
		env.Close()
		return nil, err
	}

	opts := []snapshot.Option{
		snapshot.WithCodec(c),
		snapshot.WithLogger(logger),
	}
	if rs, ok := base.(*redis.Store); ok && cfg.Store.Lock {
		opts = append(opts, snapshot.WithLocker(redis.NewLocker(rs.Client(), cfg.Store.Prefix+"lock:")))
	}

	env.Manager = snapshot.NewManager(env.Store, lattice.DefaultKinds(), opts...)
	logger.Debug("store opened", "driver", cfg.Store.Driver, "format", c.Format(), "encrypted", cfg.Encryption.Key != "")
	return env, nil
}

func openStore(cfg config.Store, env *Environment) (ports.SnapshotStore, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.NewStore(), nil
	case config.DriverFile:
		return file.New(cfg.Path), nil
	case config.DriverSQLite:
		s, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		env.closers = append(env.closers, s)
		return s, nil
	case config.DriverRedis:
		var opts []redis.Option
		if cfg.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Prefix))
		}
		if cfg.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.TTL))
		}
		s := redis.New(cfg.Addr, cfg.Password, cfg.DB, opts...)
		env.closers = append(env.closers, s)
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
