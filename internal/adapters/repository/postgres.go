package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS nova_snapshots (
    key        TEXT PRIMARY KEY,
    value      BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres stores snapshots in a key/value table through a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// ConnectPostgres opens a pool for databaseURL and verifies it.
func ConnectPostgres(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// NewPostgres creates the table if needed and returns the gateway.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close closes the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) Write(ctx context.Context, entries map[string][]byte) error {
	defer observe(BackendPostgres, "write", time.Now())
	keys := sortedKeys(entries)
	if err := validKeys(keys); err != nil {
		return err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return backendErr(BackendPostgres, "write", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, k := range keys {
		if _, err := tx.Exec(ctx,
			`INSERT INTO nova_snapshots (key, value, updated_at) VALUES ($1, $2, now())
			 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
			k, entries[k]); err != nil {
			return backendErr(BackendPostgres, "write", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return backendErr(BackendPostgres, "write", err)
	}
	return nil
}

func (p *Postgres) Read(ctx context.Context, keys []string) (map[string][]byte, error) {
	defer observe(BackendPostgres, "read", time.Now())
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	rows, err := p.pool.Query(ctx, `SELECT key, value FROM nova_snapshots WHERE key = ANY($1)`, keys)
	if err != nil {
		return nil, backendErr(BackendPostgres, "read", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			k string
			v []byte
		)
		if err := rows.Scan(&k, &v); err != nil {
			return nil, backendErr(BackendPostgres, "read", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, backendErr(BackendPostgres, "read", err)
	}
	return out, nil
}

func (p *Postgres) Delete(ctx context.Context, keys []string) error {
	defer observe(BackendPostgres, "delete", time.Now())
	if len(keys) == 0 {
		return nil
	}
	if _, err := p.pool.Exec(ctx, `DELETE FROM nova_snapshots WHERE key = ANY($1)`, keys); err != nil {
		return backendErr(BackendPostgres, "delete", err)
	}
	return nil
}
