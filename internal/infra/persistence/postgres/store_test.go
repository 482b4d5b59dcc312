package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"xsplot/internal/infra/persistence/postgres/testutil"
	"xsplot/pkg/nuclide"
)

func openStub(t *testing.T) (*Store, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	var gotDriver string
	restore := OverrideSQLOpen(func(driverName, _ string) (*sql.DB, error) {
		gotDriver = driverName
		return db, nil
	})
	t.Cleanup(restore)
	store, err := Open(context.Background(), "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if gotDriver != "pgx" {
		t.Fatalf("expected pgx driver, got %q", gotDriver)
	}
	return store, conn
}

func TestOpenEnsuresCatalogTable(t *testing.T) {
	_, conn := openStub(t)
	if len(conn.Execs) == 0 || !strings.Contains(conn.Execs[0], "CREATE TABLE IF NOT EXISTS catalog") {
		t.Fatalf("expected catalog DDL, got %v", conn.Execs)
	}
}

func TestReplaceAndLoadRecords(t *testing.T) {
	ctx := context.Background()
	store, _ := openStub(t)
	records := []nuclide.Record{
		{ID: 4, Element: "Li", Nucleons: 6, Reaction: "heating", MT: 301, Library: "ENDFB-8.0", Temperature: "294"},
		{ID: 1, Element: "Be", Nucleons: 9, Reaction: "(n,2n)", MT: 16, Library: "FENDL-3.2c", Temperature: "294"},
	}
	if err := store.ReplaceRecords(ctx, records); err != nil {
		t.Fatalf("ReplaceRecords: %v", err)
	}
	if err := store.ReplaceRecords(ctx, records); err != nil {
		t.Fatalf("second ReplaceRecords: %v", err)
	}
	got, err := store.LoadRecords(ctx)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if diff := cmp.Diff(records, got); diff != "" {
		t.Fatalf("records (-want +got):\n%s", diff)
	}
}

func TestReplaceRollsBackOnInsertFailure(t *testing.T) {
	ctx := context.Background()
	store, conn := openStub(t)
	seed := []nuclide.Record{{ID: 1, Element: "H", Nucleons: 1, Reaction: "(n,total)", MT: 1, Library: "ENDFB-8.0", Temperature: "294"}}
	if err := store.ReplaceRecords(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}
	conn.FailInsert = true
	if err := store.ReplaceRecords(ctx, seed); err == nil {
		t.Fatalf("expected insert failure")
	}
	conn.FailInsert = false
	got, err := store.LoadRecords(ctx)
	if err != nil || len(got) != 1 {
		t.Fatalf("catalog should survive a failed replace: %v %v", got, err)
	}
}

func TestOpenPingFailure(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.FailPing = true
	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := Open(context.Background(), "postgres://example/xsplot"); err == nil {
		t.Fatalf("expected ping failure")
	}
	restoreErr := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return nil, errors.New("bad dsn") })
	defer restoreErr()
	if _, err := Open(context.Background(), "::"); err == nil {
		t.Fatalf("expected open failure")
	}
}
