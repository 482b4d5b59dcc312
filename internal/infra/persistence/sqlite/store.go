// Package sqlite stores the reaction catalog in a SQLite database so large
// catalogs can be curated with SQL tooling and loaded without a JSON file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"xsplot/pkg/nuclide"
)

const defaultPath = "xsplot.db"

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

// Store is a catalog source backed by the catalog table of a SQLite file.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and ensures the
// catalog table exists.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create catalog table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
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
	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog`); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO catalog (position, id, element, nucleons, reaction, mt, library, temperature) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, i, r.ID, r.Element, r.Nucleons, r.Reaction, r.MT, r.Library, r.Temperature); err != nil {
			return fmt.Errorf("insert catalog id %d: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
