package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/lattice/pkg/domain"

	_ "modernc.org/sqlite"
)

// Store implements ports.SnapshotStore using SQLite.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and migrates it.
// Use ":memory:" for a throwaway store.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	schema := `
	PRAGMA journal_mode = WAL;
	PRAGMA busy_timeout = 5000;

	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		format TEXT NOT NULL,
		data BLOB NOT NULL,
		encrypted INTEGER NOT NULL DEFAULT 0,
		saved_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save upserts the snapshot.
func (s *Store) Save(ctx context.Context, snap *domain.Snapshot) error {
	data := snap.Data
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, format, data, encrypted, saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			format = excluded.format,
			data = excluded.data,
			encrypted = excluded.encrypted,
			saved_at = excluded.saved_at
	`, snap.ID, snap.Format, data, snap.Encrypted, snap.SavedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// Load retrieves the snapshot.
func (s *Store) Load(ctx context.Context, id string) (*domain.Snapshot, error) {
	var (
		snap    = domain.Snapshot{ID: id}
		savedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT format, data, encrypted, saved_at FROM snapshots WHERE id = ?
	`, id).Scan(&snap.Format, &snap.Data, &snap.Encrypted, &savedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot %s: %w", id, err)
	}

	snap.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s has invalid saved_at: %w", id, err)
	}
	return &snap, nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", id, err)
	}
	return nil
}

// List returns the stored snapshot IDs in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM snapshots ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
