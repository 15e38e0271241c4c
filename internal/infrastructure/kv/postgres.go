package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PostgresStore keeps keys in the kv_entries table (see migrations/kv.sql).
// Conditional writes compare the stored bytes inside a single statement, so
// two concurrent cycles cannot interleave updates to the same key.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	query := `SELECT value FROM kv_entries WHERE key = $1`

	if err := s.db.GetContext(ctx, &value, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return value, nil
}

func (s *PostgresStore) CompareAndSwap(ctx context.Context, key string, expected, next []byte) error {
	var (
		result sql.Result
		err    error
	)

	if expected == nil {
		query := `
			INSERT INTO kv_entries (key, value, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (key) DO NOTHING`

		result, err = s.db.ExecContext(ctx, query, key, next)
	} else {
		query := `
			UPDATE kv_entries
			SET value = $2, updated_at = now()
			WHERE key = $1 AND value = $3`

		result, err = s.db.ExecContext(ctx, query, key, next, expected)
	}

	if err != nil {
		return fmt.Errorf("db.ExecContext: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected: %w", err)
	}

	if affected == 0 {
		return ErrConflict
	}

	return nil
}
