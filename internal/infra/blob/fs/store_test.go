package fs

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"xsplot/internal/blob/core"
)

func TestSanitizeKeyRejectsEscapes(t *testing.T) {
	for _, key := range []string{"", "  ", "../etc/passwd", "/abs", "series/a.json.meta"} {
		if _, err := sanitizeKey(key); err == nil {
			t.Fatalf("expected %q to be rejected", key)
		}
	}
	if got, err := sanitizeKey("series//U_235.json"); err != nil || got != "series/U_235.json" {
		t.Fatalf("unexpected clean key %q %v", got, err)
	}
}

func TestPutWritesSidecarAndETag(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	info, err := s.Put(context.Background(), "exports/job/data.json", bytes.NewReader([]byte("{}")), core.PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.ETag == "" || info.URL != "http://local.blob/exports/job/data.json" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := os.Stat(filepath.Join(root, "exports", "job", "data.json.meta")); err != nil {
		t.Fatalf("expected sidecar: %v", err)
	}
	if _, err := s.PresignURL(context.Background(), "exports/job/data.json", core.SignedURLOptions{Method: "PUT"}); err == nil {
		t.Fatalf("expected PUT presign to be unsupported")
	}
}
