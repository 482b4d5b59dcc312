package series

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"xsplot/internal/blob"
	"xsplot/internal/observability"
)

// DefaultCacheSize is the number of datasets kept in memory.
const DefaultCacheSize = 256

// Cache tiers reported to the metrics recorder.
const (
	TierMemory = "memory"
	TierBlob   = "blob"
)

// Cache holds decoded datasets keyed by dataset key. A bounded LRU sits in
// front of an optional blob store that keeps the raw documents across
// restarts. Payload slices handed out by the cache must not be mutated.
type Cache struct {
	mem      *lru.Cache[string, Payload]
	blobs    blob.Store
	logger   *zap.Logger
	recorder observability.Recorder
}

// NewCache builds a cache holding up to size datasets in memory. store may be
// nil to disable the persistent tier.
func NewCache(size int, store blob.Store, logger *zap.Logger, recorder observability.Recorder) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	mem, err := lru.New[string, Payload](size)
	if err != nil {
		return nil, fmt.Errorf("create series lru: %w", err)
	}
	if recorder == nil {
		recorder = observability.NopRecorder{}
	}
	return &Cache{mem: mem, blobs: store, logger: observability.OrNop(logger), recorder: recorder}, nil
}

// BlobKey is the blob store key for a dataset document.
func BlobKey(datasetKey string) string { return "series/" + datasetKey + ".json" }

// Get returns the dataset for key, consulting the blob tier on a memory miss.
func (c *Cache) Get(ctx context.Context, key string) (Payload, bool) {
	if p, ok := c.mem.Get(key); ok {
		c.recorder.ObserveCache(TierMemory, true)
		return p, true
	}
	c.recorder.ObserveCache(TierMemory, false)
	if c.blobs == nil {
		return Payload{}, false
	}
	p, err := c.loadBlob(ctx, key)
	if err != nil {
		if !errors.Is(err, blob.ErrNotFound) {
			c.logger.Warn("series blob read failed", zap.String("key", key), zap.Error(err))
		}
		c.recorder.ObserveCache(TierBlob, false)
		return Payload{}, false
	}
	c.recorder.ObserveCache(TierBlob, true)
	c.mem.Add(key, p)
	return p, true
}

// peek checks the memory tier without touching recency or metrics.
func (c *Cache) peek(key string) (Payload, bool) { return c.mem.Peek(key) }

func (c *Cache) loadBlob(ctx context.Context, key string) (Payload, error) {
	_, rc, err := c.blobs.Get(ctx, BlobKey(key))
	if err != nil {
		return Payload{}, err
	}
	defer func() { _ = rc.Close() }()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return Payload{}, err
	}
	return Decode(raw)
}

// Add stores a freshly fetched dataset. raw is persisted verbatim in the blob
// tier; an existing blob for key is left untouched.
func (c *Cache) Add(ctx context.Context, key string, raw []byte, p Payload) {
	c.mem.Add(key, p)
	if c.blobs == nil {
		return
	}
	_, err := c.blobs.Put(ctx, BlobKey(key), bytes.NewReader(raw), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"dataset": key},
	})
	if err != nil && !errors.Is(err, blob.ErrExists) {
		c.logger.Warn("series blob write failed", zap.String("key", key), zap.Error(err))
	}
}

// Len reports the number of datasets held in memory.
func (c *Cache) Len() int { return c.mem.Len() }
