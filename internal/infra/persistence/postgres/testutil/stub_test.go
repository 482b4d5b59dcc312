package testutil

import (
	"context"
	"testing"
)

func TestStubDBRoundTripsRowsAndRollsBack(t *testing.T) {
	ctx := context.Background()
	db, conn := NewStubDB()
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, "INSERT INTO catalog (id, element) VALUES ($1, $2)", 1, "U"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := tx.ExecContext(ctx, "TRUNCATE TABLE catalog"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	_ = tx.Rollback()

	var (
		id      int
		element string
	)
	if err := db.QueryRowContext(ctx, "SELECT id, element FROM catalog ORDER BY id").Scan(&id, &element); err != nil {
		t.Fatalf("select: %v", err)
	}
	if id != 1 || element != "U" {
		t.Fatalf("unexpected row %d %q", id, element)
	}
	if len(conn.Execs) != 2 {
		t.Fatalf("expected two recorded statements, got %v", conn.Execs)
	}
}
