package series

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxDatasetBytes bounds a single remote document. The largest published
// ENDF/B-VIII.0 datasets are a few megabytes.
const maxDatasetBytes = 64 << 20

// DefaultTimeout applies to each remote request when the caller does not
// supply an http.Client.
const DefaultTimeout = 30 * time.Second

// Fetcher retrieves the raw bytes of a remote dataset document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches datasets over plain HTTP GET.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher returns a fetcher using client, or a client with
// DefaultTimeout when nil.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDatasetBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if len(body) > maxDatasetBytes {
		return nil, fmt.Errorf("GET %s: body exceeds %d bytes", url, maxDatasetBytes)
	}
	return body, nil
}
