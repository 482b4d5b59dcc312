// Package postgres serves the reaction catalog from a Postgres table, for
// deployments that share one curated catalog between several xsplot instances.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"xsplot/pkg/nuclide"
)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/xsplot?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

const schema = `CREATE TABLE IF NOT EXISTS catalog (
	position    INTEGER NOT NULL,
	id          INTEGER PRIMARY KEY,
	element     TEXT NOT NULL,
	nucleons    INTEGER NOT NULL,
	reaction    TEXT NOT NULL,
	mt          INTEGER NOT NULL,
	library     TEXT NOT NULL,
	temperature TEXT NOT NULL
)`

// Store is a catalog source backed by Postgres.
type Store struct {
	db *sql.DB
}

// Open connects to dsn (defaultDSN when empty), pings the server and
// ensures the catalog table exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure catalog table: %w", err)
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// LoadRecords returns the catalog rows in their stored order.
func (s *Store) LoadRecords(ctx context.Context) ([]nuclide.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, element, nucleons, reaction, mt, library, temperature FROM catalog ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("select catalog: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []nuclide.Record
	for rows.Next() {
		var r nuclide.Record
		if err := rows.Scan(&r.ID, &r.Element, &r.Nucleons, &r.Reaction, &r.MT, &r.Library, &r.Temperature); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog: %w", err)
	}
	return out, nil
}

// ReplaceRecords swaps the stored catalog for records in one transaction.
func (s *Store) ReplaceRecords(ctx context.Context, records []nuclide.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `TRUNCATE TABLE catalog`); err != nil {
		return fmt.Errorf("truncate catalog: %w", err)
	}
	const insert = `INSERT INTO catalog (position, id, element, nucleons, reaction, mt, library, temperature) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for i, r := range records {
		if _, err := tx.ExecContext(ctx, insert, i, r.ID, r.Element, r.Nucleons, r.Reaction, r.MT, r.Library, r.Temperature); err != nil {
			return fmt.Errorf("insert catalog id %d: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
