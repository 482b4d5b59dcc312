package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"xsplot/internal/blob"
	"xsplot/internal/catalog"
	"xsplot/internal/config"
	"xsplot/internal/infra/persistence/postgres"
	"xsplot/internal/infra/persistence/sqlite"
	"xsplot/internal/observability"
	"xsplot/internal/series"
	"xsplot/pkg/nuclide"
)

// app is the wired object graph behind every subcommand.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *observability.Metrics
	catalog  *catalog.Catalog
	blobs    blob.Store
	resolver *series.Resolver
}

// catalogStore is a catalog source that can also be rewritten.
type catalogStore interface {
	catalog.Source
	ReplaceRecords(ctx context.Context, records []nuclide.Record) error
	Close() error
}

// openCatalogStore opens the database behind a sqlite or postgres catalog source.
func openCatalogStore(ctx context.Context, cfg config.CatalogConfig) (catalogStore, error) {
	switch cfg.Source {
	case config.SourceSQLite:
		store, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.SourcePostgres:
		store, err := postgres.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("catalog source %q is not a database", cfg.Source)
	}
}

func loadCatalog(ctx context.Context, cfg config.CatalogConfig) (*catalog.Catalog, error) {
	switch cfg.Source {
	case config.SourceEmbedded:
		return catalog.Open(ctx, catalog.FileSource{})
	case config.SourceFile:
		return catalog.Open(ctx, catalog.FileSource{Path: cfg.Path})
	}
	store, err := openCatalogStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()
	cat, err := catalog.Open(ctx, store)
	if err != nil {
		return nil, err
	}
	if cat.Len() == 0 {
		return nil, errors.New("catalog is empty; run `xsplot catalog import` first")
	}
	return cat, nil
}

// newApp wires configuration into the catalog, blob store and resolver.
// needBlobs opens the blob store even when series persistence is off.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, needBlobs bool) (*app, error) {
	a := &app{cfg: cfg, logger: logger, metrics: observability.NewMetrics()}

	cat, err := loadCatalog(ctx, cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	a.catalog = cat
	logger.Debug("catalog loaded", zap.String("source", cfg.Catalog.Source), zap.Int("records", cat.Len()))

	if needBlobs || cfg.Fetch.PersistSeries {
		store, err := blob.Open(ctx, cfg.Blob)
		if err != nil {
			return nil, fmt.Errorf("open blob store: %w", err)
		}
		a.blobs = store
	}

	var seriesStore blob.Store
	if cfg.Fetch.PersistSeries {
		seriesStore = a.blobs
	}
	cache, err := series.NewCache(cfg.Fetch.CacheSize, seriesStore, logger, a.metrics)
	if err != nil {
		return nil, fmt.Errorf("build series cache: %w", err)
	}
	timeout, err := cfg.FetchTimeout()
	if err != nil {
		return nil, err
	}
	resolver, err := series.NewResolver(cat, series.Options{
		Libraries:   cfg.LibraryMap(),
		Fetcher:     series.NewHTTPFetcher(&http.Client{Timeout: timeout}),
		Cache:       cache,
		Concurrency: cfg.Fetch.Concurrency,
		Logger:      logger,
		Recorder:    a.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("build resolver: %w", err)
	}
	a.resolver = resolver
	return a, nil
}
