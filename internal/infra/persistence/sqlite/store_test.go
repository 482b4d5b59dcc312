package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"xsplot/internal/catalog"
	"xsplot/pkg/nuclide"
)

func TestReplaceAndLoadPreservesOrder(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "catalog.db")
	store, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	records := []nuclide.Record{
		{ID: 9, Element: "U", Nucleons: 235, Reaction: "(n,gamma)", MT: 102, Library: "ENDFB-8.0", Temperature: "294"},
		{ID: 2, Element: "Fe", Nucleons: 56, Reaction: "(n,elastic)", MT: 2, Library: "FENDL-3.2c", Temperature: "294"},
	}
	if err := store.ReplaceRecords(ctx, records); err != nil {
		t.Fatalf("ReplaceRecords: %v", err)
	}
	got, err := store.LoadRecords(ctx)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if diff := cmp.Diff(records, got); diff != "" {
		t.Fatalf("records (-want +got):\n%s", diff)
	}

	if err := store.ReplaceRecords(ctx, records[1:]); err != nil {
		t.Fatalf("second replace: %v", err)
	}
	cat, err := catalog.Open(ctx, store)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	if cat.Len() != 1 {
		t.Fatalf("replace should drop old rows, have %d", cat.Len())
	}
}

func TestReplaceRollsBackOnDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, filepath.Join(t.TempDir(), "dup.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	seed := []nuclide.Record{{ID: 1, Element: "H", Nucleons: 1, Reaction: "(n,total)", MT: 1, Library: "ENDFB-8.0", Temperature: "294"}}
	if err := store.ReplaceRecords(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.ReplaceRecords(ctx, []nuclide.Record{seed[0], seed[0]}); err == nil {
		t.Fatalf("expected primary key violation")
	}
	got, err := store.LoadRecords(ctx)
	if err != nil || len(got) != 1 {
		t.Fatalf("failed replace must roll back: %v %v", got, err)
	}
}
