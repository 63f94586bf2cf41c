package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var sqliteSchema string

// SQLite stores snapshots in a single key/value table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and applies the schema.
//
// The connection runs in WAL mode with a 5-second busy timeout and a single
// open connection, since SQLite allows one writer at a time.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Write(ctx context.Context, entries map[string][]byte) (err error) {
	defer observe(BackendSQLite, "write", time.Now())
	keys := sortedKeys(entries)
	if err := validKeys(keys); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return backendErr(BackendSQLite, "write", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, k := range keys {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO snapshots (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			k, entries[k], now); err != nil {
			return backendErr(BackendSQLite, "write", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return backendErr(BackendSQLite, "write", err)
	}
	return nil
}

func (s *SQLite) Read(ctx context.Context, keys []string) (map[string][]byte, error) {
	defer observe(BackendSQLite, "read", time.Now())
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	query, args := inClause(`SELECT key, value FROM snapshots WHERE key IN (%s)`, keys)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, backendErr(BackendSQLite, "read", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			k string
			v []byte
		)
		if err := rows.Scan(&k, &v); err != nil {
			return nil, backendErr(BackendSQLite, "read", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, backendErr(BackendSQLite, "read", err)
	}
	return out, nil
}

func (s *SQLite) Delete(ctx context.Context, keys []string) error {
	defer observe(BackendSQLite, "delete", time.Now())
	if len(keys) == 0 {
		return nil
	}
	query, args := inClause(`DELETE FROM snapshots WHERE key IN (%s)`, keys)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return backendErr(BackendSQLite, "delete", err)
	}
	return nil
}

func inClause(format string, keys []string) (string, []any) {
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	return fmt.Sprintf(format, placeholders), args
}

func sortedKeys(entries map[string][]byte) []string {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
