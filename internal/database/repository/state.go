package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// StateRepo is a JSON key-value store for per-screen UI state.
type StateRepo struct {
	db DBTX
}

func NewStateRepo(db DBTX) *StateRepo { return &StateRepo{db: db} }

// Get decodes the value stored under key into dest. It reports false, with
// dest untouched, when the key is absent.
func (r *StateRepo) Get(ctx context.Context, key string, dest any) (bool, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM screen_state WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("decode state %s: %w", key, err)
	}
	return true, nil
}

// Put stores v as JSON under key, replacing any previous value.
func (r *StateRepo) Put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode state %s: %w", key, err)
	}
	_, err = r.db.ExecContext(ctx, `
	INSERT INTO screen_state(key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at;
	`, key, string(data), time.Now().UTC().Truncate(time.Second))
	return err
}

// PutIfAbsent stores v only when key has no value yet. It reports whether a row was written.
func (r *StateRepo) PutIfAbsent(ctx context.Context, key string, v any) (bool, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("encode state %s: %w", key, err)
	}
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO screen_state(key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO NOTHING;
	`, key, string(data), time.Now().UTC().Truncate(time.Second))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *StateRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM screen_state WHERE key = ?`, key)
	return err
}

// List returns every stored entry ordered by key.
func (r *StateRepo) List(ctx context.Context) ([]ScreenState, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value, updated_at FROM screen_state ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ScreenState
	for rows.Next() {
		var s ScreenState
		var raw string
		if err := rows.Scan(&s.Key, &raw, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.Value = json.RawMessage(raw)
		out = append(out, s)
	}
	return out, rows.Err()
}
