package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	paysheet "github.com/paysheet/paysheet/go"
)

const schema = `
CREATE TABLE IF NOT EXISTS saved_selections (
	customer_id TEXT PRIMARY KEY,
	selection   TEXT NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store keeps saved selections in PostgreSQL
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pool for dsn and pings the database
func Connect(ctx context.Context, dsn string) (*Store, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("could not parse postgres dsn: %w", err)
	}
	config.MaxConns = 10
	config.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("could not open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("could not connect to postgres: %w", err)
	}

	return New(pool), nil
}

// New wraps an existing pool
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the saved_selections table if needed
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate saved_selections: %w", err)
	}
	return nil
}

// Close closes the pool
func (s *Store) Close() {
	s.pool.Close()
}

// GetSelection returns the customer's selection, or SelectionNone if absent
func (s *Store) GetSelection(ctx context.Context, customerID string) (paysheet.SavedSelection, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT selection FROM saved_selections WHERE customer_id = $1`,
		customerID,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return paysheet.SelectionNone{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read selection for %s: %w", customerID, err)
	}
	return paysheet.DecodeSelection(value), nil
}

// SaveSelection upserts the customer's selection. An unchanged value leaves
// the row untouched.
func (s *Store) SaveSelection(ctx context.Context, customerID string, selection paysheet.SavedSelection) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO saved_selections (customer_id, selection, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (customer_id) DO UPDATE
		SET selection = EXCLUDED.selection, updated_at = EXCLUDED.updated_at
		WHERE saved_selections.selection IS DISTINCT FROM EXCLUDED.selection`,
		customerID, paysheet.EncodeSelection(selection),
	)
	if err != nil {
		return fmt.Errorf("failed to save selection for %s: %w", customerID, err)
	}
	return nil
}

// Ensure Store implements SelectionStore
var _ paysheet.SelectionStore = (*Store)(nil)
