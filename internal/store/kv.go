package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Put records value as the current value of key and appends it to the
// key's history in one transaction.
func (s *Store) Put(ctx context.Context, key, value string) (Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("put %q: %w", key, err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM snapshots`).Scan(&seq); err != nil {
		return Snapshot{}, fmt.Errorf("put %q: next seq: %w", key, err)
	}

	snap := Snapshot{ID: s.newID(), Key: key, Value: value, Seq: seq}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, key, value, seq)
		VALUES (?, ?, ?, ?)
	`, snap.ID, snap.Key, snap.Value, snap.Seq); err != nil {
		return Snapshot{}, fmt.Errorf("put %q: write snapshot: %w", key, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO entries (key, value, seq)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, seq = excluded.seq
	`, key, value, seq); err != nil {
		return Snapshot{}, fmt.Errorf("put %q: write entry: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("put %q: commit: %w", key, err)
	}
	return snap, nil
}

// Get returns the current value of key. ok is false when key was never written.
func (s *Store) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT value FROM entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// History returns every snapshot of key, oldest first.
// Returns an empty slice (not nil) when key has no history.
func (s *Store) History(ctx context.Context, key string) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, key, value, seq
		FROM snapshots
		WHERE key = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, key)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	history := []Snapshot{}
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Key, &snap.Value, &snap.Seq); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		history = append(history, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return history, nil
}

// Snapshot returns the snapshot with the given id.
func (s *Store) Snapshot(ctx context.Context, id string) (Snapshot, error) {
	var snap Snapshot
	err := s.db.QueryRowContext(ctx, `
		SELECT id, key, value, seq FROM snapshots WHERE id = ?
	`, id).Scan(&snap.ID, &snap.Key, &snap.Value, &snap.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("snapshot %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %q: %w", id, err)
	}
	return snap, nil
}

// Restore makes a past snapshot the current value of its key. The restore
// is itself recorded as a new snapshot.
func (s *Store) Restore(ctx context.Context, id string) (Snapshot, error) {
	snap, err := s.Snapshot(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	return s.Put(ctx, snap.Key, snap.Value)
}

// Backend binds the Store to ctx as a key/text backend for the state codec.
func (s *Store) Backend(ctx context.Context) *Backend {
	return &Backend{ctx: ctx, store: s}
}

// Backend adapts a Store to plain Get/Set calls.
type Backend struct {
	ctx   context.Context
	store *Store
}

// Get returns the current value of key.
func (b *Backend) Get(key string) (string, bool, error) {
	return b.store.Get(b.ctx, key)
}

// Set records a new value for key.
func (b *Backend) Set(key, text string) error {
	_, err := b.store.Put(b.ctx, key, text)
	return err
}
