package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/codec"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/network"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/aretw0/lattice/pkg/schema"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates snapshot access, ensuring safe concurrent operations.
// Lock entries are reference counted and dropped when unused.
type Manager struct {
	store ports.SnapshotStore
	kinds *registry.Registry
	codec codec.Codec

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the TTL of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithCodec sets the codec used to encode new snapshots. Loading always uses
// the codec recorded in the snapshot.
func WithCodec(c codec.Codec) Option {
	return func(m *Manager) {
		if c != nil {
			m.codec = c
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a Manager over store, materializing components through kinds.
func NewManager(store ports.SnapshotStore, kinds *registry.Registry, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		kinds:   kinds,
		codec:   codec.NewJSONCodec(),
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewID returns a fresh random snapshot ID.
func NewID() string {
	return uuid.NewString()
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu, and call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// WithLock executes fn while holding the lock for the snapshot ID.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"snapshot_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Save encodes root and stores it under id.
func (m *Manager) Save(ctx context.Context, id string, root domain.Component) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.save(ctx, id, root)
	})
}

// SaveNew stores root under a fresh ID and returns it.
func (m *Manager) SaveNew(ctx context.Context, root domain.Component) (string, error) {
	id := NewID()
	return id, m.Save(ctx, id, root)
}

func (m *Manager) save(ctx context.Context, id string, root domain.Component) error {
	doc, err := schema.Encode(root)
	if err != nil {
		return err
	}
	data, err := codec.Marshal(m.codec, doc)
	if err != nil {
		return err
	}

	snap := &domain.Snapshot{
		ID:      id,
		Format:  m.codec.Format(),
		Data:    data,
		SavedAt: m.now().UTC(),
	}
	if err := m.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", id, err)
	}

	m.logger.Debug("snapshot saved", "snapshot_id", id, "format", snap.Format, "bytes", len(data))
	return nil
}

// Document loads the stored document without materializing it.
func (m *Manager) Document(ctx context.Context, id string) (*schema.Document, error) {
	var doc *schema.Document
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		doc, err = m.document(ctx, id)
		return err
	})
	return doc, err
}

func (m *Manager) document(ctx context.Context, id string) (*schema.Document, error) {
	snap, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := codec.ByFormat(snap.Format)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", id, err)
	}
	doc, err := codec.Unmarshal(c, snap.Data)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", id, err)
	}
	return doc, nil
}

// Load materializes the root component stored under id.
func (m *Manager) Load(ctx context.Context, id string) (domain.Component, error) {
	var root domain.Component
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		root, err = m.load(ctx, id)
		return err
	})
	return root, err
}

func (m *Manager) load(ctx context.Context, id string) (domain.Component, error) {
	doc, err := m.document(ctx, id)
	if err != nil {
		return nil, err
	}
	root, err := schema.Decode(doc, m.kinds)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", id, err)
	}
	return root, nil
}

// LoadNetwork loads a snapshot whose root is a Digraph.
func (m *Manager) LoadNetwork(ctx context.Context, id string) (*network.Digraph, error) {
	root, err := m.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	d, ok := root.(*network.Digraph)
	if !ok {
		return nil, fmt.Errorf("snapshot %s holds a %s, not a %s", id, root.Kind(), network.KindDigraph)
	}
	return d, nil
}

// Update loads the network stored under id, applies fn and saves the result,
// all under the snapshot's lock. A missing snapshot starts from an empty
// network.
func (m *Manager) Update(ctx context.Context, id string, fn func(*network.Digraph) error) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		d, err := m.loadOrNew(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(d); err != nil {
			return err
		}
		return m.save(ctx, id, d)
	})
}

func (m *Manager) loadOrNew(ctx context.Context, id string) (*network.Digraph, error) {
	root, err := m.load(ctx, id)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		return network.New(), nil
	}
	if err != nil {
		return nil, err
	}
	d, ok := root.(*network.Digraph)
	if !ok {
		return nil, fmt.Errorf("snapshot %s holds a %s, not a %s", id, root.Kind(), network.KindDigraph)
	}
	return d, nil
}

// Delete removes the snapshot from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}
