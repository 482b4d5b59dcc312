package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"xsplot/internal/blob/core"
)

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected bucket error")
	}
}

func TestKeyPrefixIsTransparent(t *testing.T) {
	ctx := context.Background()
	s := newMock("/xsplot/")
	if s.objectKey("series/a.json") != "xsplot/series/a.json" {
		t.Fatalf("unexpected object key %q", s.objectKey("series/a.json"))
	}
	if _, err := s.Put(ctx, "series/a.json", bytes.NewReader([]byte(`{"energy":[1]}`)), core.PutOptions{ContentType: "application/json"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	infos, err := s.List(ctx, "series/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 || infos[0].Key != "series/a.json" {
		t.Fatalf("expected unprefixed key, got %+v", infos)
	}
	info, rc, err := s.Get(ctx, "series/a.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != `{"energy":[1]}` || info.ContentType != "application/json" {
		t.Fatalf("unexpected object %q %+v", body, info)
	}
}

func TestDeleteReportsExistence(t *testing.T) {
	ctx := context.Background()
	s := NewMockForTests()
	if existed, err := s.Delete(ctx, "missing"); err != nil || existed {
		t.Fatalf("expected (false, nil), got (%v, %v)", existed, err)
	}
	if _, err := s.Put(ctx, "k", bytes.NewReader([]byte("v")), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if existed, err := s.Delete(ctx, "k"); err != nil || !existed {
		t.Fatalf("expected (true, nil), got (%v, %v)", existed, err)
	}
	if _, err := s.Head(ctx, "k"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPresignRejectsNonGet(t *testing.T) {
	s := NewMockForTests()
	if _, err := s.PresignURL(context.Background(), "k", core.SignedURLOptions{Method: "PUT"}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	url, err := s.PresignURL(context.Background(), "k", core.SignedURLOptions{})
	if err != nil || url == "" {
		t.Fatalf("expected presigned url, got %q %v", url, err)
	}
}
