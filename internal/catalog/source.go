package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"xsplot/pkg/nuclide"
)

//go:embed default_catalog.json
var defaultCatalog []byte

// DecodeJSON reads a JSON array of catalog records.
func DecodeJSON(r io.Reader) ([]nuclide.Record, error) {
	var records []nuclide.Record
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode catalog json: %w", err)
	}
	return records, nil
}

// FileSource loads records from a JSON file. An empty Path selects the
// catalog bundled with the binary.
type FileSource struct {
	Path string
}

// LoadRecords implements Source.
func (s FileSource) LoadRecords(_ context.Context) ([]nuclide.Record, error) {
	if s.Path == "" {
		return DecodeJSON(bytes.NewReader(defaultCatalog))
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", s.Path, err)
	}
	defer func() { _ = f.Close() }()
	return DecodeJSON(f)
}

// StaticSource serves a fixed record slice. Handy for tests and importers.
type StaticSource []nuclide.Record

// LoadRecords implements Source.
func (s StaticSource) LoadRecords(_ context.Context) ([]nuclide.Record, error) {
	out := make([]nuclide.Record, len(s))
	copy(out, s)
	return out, nil
}
