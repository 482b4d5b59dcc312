// Package series resolves selected catalog ids into plotted energy /
// cross-section series. Datasets are fetched concurrently, shared across
// resolves through a content cache keyed by dataset key, and fetch failures
// degrade per id instead of failing the whole batch.
package series

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"xsplot/internal/observability"
	"xsplot/pkg/nuclide"
)

// DefaultConcurrency bounds parallel remote fetches within one resolve.
const DefaultConcurrency = 8

// Lookup finds catalog records by id.
type Lookup interface {
	Lookup(id int) (nuclide.Record, bool)
}

// Options configures a Resolver. Zero values select defaults.
type Options struct {
	Libraries   Libraries
	Fetcher     Fetcher
	Cache       *Cache
	Concurrency int
	Logger      *zap.Logger
	Recorder    observability.Recorder
}

// Result is the outcome of one resolve. Entries follow the requested id
// order with failed ids left out; Failures lists those ids in the same order.
type Result struct {
	Entries  []nuclide.Series      `json:"entries"`
	Failures []*nuclide.FetchError `json:"failures,omitempty"`
}

// Labels returns the entry labels in order.
func (r Result) Labels() []string {
	out := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Label
	}
	return out
}

// Resolver turns record ids into series.
type Resolver struct {
	records     Lookup
	libraries   Libraries
	fetcher     Fetcher
	cache       *Cache
	concurrency int
	logger      *zap.Logger
	recorder    observability.Recorder
	flights     singleflight.Group
}

// NewResolver wires a Resolver over records.
func NewResolver(records Lookup, opts Options) (*Resolver, error) {
	if records == nil {
		return nil, errors.New("series resolver requires a record lookup")
	}
	r := &Resolver{
		records:     records,
		libraries:   opts.Libraries,
		fetcher:     opts.Fetcher,
		cache:       opts.Cache,
		concurrency: opts.Concurrency,
		logger:      observability.OrNop(opts.Logger),
		recorder:    opts.Recorder,
	}
	if r.libraries == nil {
		r.libraries = DefaultLibraries()
	}
	if r.fetcher == nil {
		r.fetcher = NewHTTPFetcher(nil)
	}
	if r.recorder == nil {
		r.recorder = observability.NopRecorder{}
	}
	if r.concurrency <= 0 {
		r.concurrency = DefaultConcurrency
	}
	if r.cache == nil {
		cache, err := NewCache(DefaultCacheSize, nil, r.logger, r.recorder)
		if err != nil {
			return nil, err
		}
		r.cache = cache
	}
	return r, nil
}

// Cache exposes the resolver's dataset cache.
func (r *Resolver) Cache() *Cache { return r.cache }

// Resolve fetches the series for ids. Every id must exist in the catalog;
// an unknown id aborts the resolve with ErrMissingRecord before any fetch is
// issued. Per-id fetch failures are reported in Result.Failures. The only
// other error is cancellation of ctx.
func (r *Resolver) Resolve(ctx context.Context, ids []int) (Result, error) {
	started := time.Now()
	records := make([]nuclide.Record, len(ids))
	for i, id := range ids {
		rec, ok := r.records.Lookup(id)
		if !ok {
			err := nuclide.MissingRecordError(id)
			r.logger.Error("resolve aborted", zap.Int("id", id), zap.Error(err))
			return Result{}, err
		}
		records[i] = rec
	}

	entries := make([]*nuclide.Series, len(records))
	failures := make([]*nuclide.FetchError, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, rec := range records {
		g.Go(func() error {
			s, ferr := r.resolveOne(gctx, rec)
			if ferr != nil {
				failures[i] = ferr
				return nil
			}
			entries[i] = &s
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("resolve: %w", err)
	}

	var res Result
	res.Entries = make([]nuclide.Series, 0, len(records))
	for i := range records {
		if failures[i] != nil {
			res.Failures = append(res.Failures, failures[i])
			continue
		}
		res.Entries = append(res.Entries, *entries[i])
	}
	r.recorder.ObserveResolve(time.Since(started), len(res.Entries), len(res.Failures))
	r.logger.Debug("resolve complete",
		zap.Int("requested", len(ids)),
		zap.Int("entries", len(res.Entries)),
		zap.Int("failures", len(res.Failures)),
		zap.Duration("elapsed", time.Since(started)))
	return res, nil
}

type fetched struct {
	payload Payload
	kind    nuclide.FailureKind
	err     error
}

func (r *Resolver) resolveOne(ctx context.Context, rec nuclide.Record) (nuclide.Series, *nuclide.FetchError) {
	key := rec.DatasetKey()
	url, err := r.libraries.URL(rec.Library, key)
	if err != nil {
		r.recorder.ObserveFetch(rec.Library, observability.OutcomeUnsupported)
		return nuclide.Series{}, r.fail(rec, key, nuclide.FailureUnsupportedLibrary, err)
	}
	if p, ok := r.cache.Get(ctx, key); ok {
		return newSeries(rec, key, p), nil
	}
	// The flight is shared by every caller waiting on key, so it must not
	// die with whichever caller started it. The fetcher's client timeout
	// bounds it instead.
	flightCtx := context.WithoutCancel(ctx)
	ch := r.flights.DoChan(key, func() (any, error) {
		// A flight that finished between our cache miss and DoChan already
		// populated the memory tier.
		if p, ok := r.cache.peek(key); ok {
			return fetched{payload: p}, nil
		}
		return r.fetch(flightCtx, rec.Library, key, url), nil
	})
	var out fetched
	select {
	case res := <-ch:
		out = res.Val.(fetched)
	case <-ctx.Done():
		return nuclide.Series{}, r.fail(rec, key, nuclide.FailureNetwork, ctx.Err())
	}
	if out.err != nil {
		return nuclide.Series{}, r.fail(rec, key, out.kind, out.err)
	}
	return newSeries(rec, key, out.payload), nil
}

func (r *Resolver) fetch(ctx context.Context, library, key, url string) fetched {
	raw, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		r.recorder.ObserveFetch(library, observability.OutcomeNetwork)
		return fetched{kind: nuclide.FailureNetwork, err: err}
	}
	p, err := Decode(raw)
	if err != nil {
		r.recorder.ObserveFetch(library, observability.OutcomeDecode)
		return fetched{kind: nuclide.FailureDecode, err: err}
	}
	r.recorder.ObserveFetch(library, observability.OutcomeSuccess)
	r.cache.Add(ctx, key, raw, p)
	return fetched{payload: p}
}

func (r *Resolver) fail(rec nuclide.Record, key string, kind nuclide.FailureKind, err error) *nuclide.FetchError {
	r.logger.Warn("series fetch failed",
		zap.Int("id", rec.ID),
		zap.String("key", key),
		zap.String("kind", string(kind)),
		zap.Error(err))
	return &nuclide.FetchError{ID: rec.ID, Key: key, Kind: kind, Err: err}
}

func newSeries(rec nuclide.Record, key string, p Payload) nuclide.Series {
	return nuclide.Series{
		ID:           rec.ID,
		Key:          key,
		Label:        rec.Label(),
		Energy:       slices.Clone(p.Energy),
		CrossSection: slices.Clone(p.CrossSection),
		Visible:      true,
	}
}
