// Package catalog holds the immutable reaction catalog together with the
// search filter and pagination used by the table view.
package catalog

import (
	"context"
	"fmt"

	"xsplot/pkg/nuclide"
)

// Source yields the records a Catalog is built from.
type Source interface {
	LoadRecords(ctx context.Context) ([]nuclide.Record, error)
}

// Catalog is a read-only, id-indexed list of reaction records. It is never
// mutated after construction and is safe for concurrent readers.
type Catalog struct {
	records []nuclide.Record
	byID    map[int]int
}

// New builds a catalog from records, preserving their order. Duplicate ids are rejected.
func New(records []nuclide.Record) (*Catalog, error) {
	c := &Catalog{
		records: make([]nuclide.Record, len(records)),
		byID:    make(map[int]int, len(records)),
	}
	copy(c.records, records)
	for i, rec := range c.records {
		if prev, dup := c.byID[rec.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog id %d at rows %d and %d", rec.ID, prev, i)
		}
		c.byID[rec.ID] = i
	}
	return c, nil
}

// Open loads records from src and builds a catalog.
func Open(ctx context.Context, src Source) (*Catalog, error) {
	if src == nil {
		return nil, fmt.Errorf("catalog source not configured")
	}
	records, err := src.LoadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return New(records)
}

// Len returns the number of records.
func (c *Catalog) Len() int { return len(c.records) }

// Records returns a copy of all records in catalog order.
func (c *Catalog) Records() []nuclide.Record {
	out := make([]nuclide.Record, len(c.records))
	copy(out, c.records)
	return out
}

// Lookup returns the record with the given id.
func (c *Catalog) Lookup(id int) (nuclide.Record, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return nuclide.Record{}, false
	}
	return c.records[idx], true
}

// Search filters the catalog with the given search state.
func (c *Catalog) Search(state nuclide.SearchState) []nuclide.Record {
	return Filter(c.records, state)
}
