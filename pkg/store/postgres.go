package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createCountersTable = `
CREATE TABLE IF NOT EXISTS swapper_counters (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertCounter = `
INSERT INTO swapper_counters (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

// PostgresStore keeps counters in a single table
type PostgresStore struct {
	pool   *pgxpool.Pool
	prefix string
}

var _ CounterStore = (*PostgresStore)(nil)

// NewPostgresStore connects to postgres and makes sure the counters table exists
func NewPostgresStore(ctx context.Context, connString string, prefix string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, createCountersTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create counters table: %w", err)
	}

	return &PostgresStore{pool: pool, prefix: prefix}, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.pool.QueryRow(ctx, "SELECT value FROM swapper_counters WHERE key = $1", s.prefix+key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select counter %s: %w", s.prefix+key, err)
	}
	return value, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.pool.Exec(ctx, upsertCounter, s.prefix+key, value); err != nil {
		return fmt.Errorf("upsert counter %s: %w", s.prefix+key, err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
