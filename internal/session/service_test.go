package session

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"xsplot/internal/series"
	"xsplot/pkg/nuclide"
)

type resolverFunc func(ctx context.Context, ids []int) (series.Result, error)

func (f resolverFunc) Resolve(ctx context.Context, ids []int) (series.Result, error) {
	return f(ctx, ids)
}

func TestDispatchLastWriteWins(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	resolver := resolverFunc(func(_ context.Context, ids []int) (series.Result, error) {
		if len(ids) == 1 {
			close(started)
			<-release
		}
		return resultFor(ids...), nil
	})
	svc := NewService(New(testCatalog(t), 10), resolver, zaptest.NewLogger(t))
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := svc.Dispatch(ctx, ToggleSelection(100))
		done <- err
	}()
	<-started
	snap, err := svc.Dispatch(ctx, ToggleSelection(101))
	if err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	if len(snap.Series) != 2 {
		t.Fatalf("expected newest selection plotted, got %+v", snap.Series)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	if got := svc.View().Snapshot().Series; len(got) != 2 {
		t.Fatalf("slow stale resolve overwrote the view: %+v", got)
	}
}

func TestDispatchFailedResolveKeepsLastSeries(t *testing.T) {
	fail := false
	resolver := resolverFunc(func(_ context.Context, ids []int) (series.Result, error) {
		if fail {
			return series.Result{}, nuclide.MissingRecordError(ids[0])
		}
		return resultFor(ids...), nil
	})
	svc := NewService(New(testCatalog(t), 10), resolver, zap.NewNop())
	ctx := context.Background()
	if _, err := svc.Dispatch(ctx, ToggleSelection(100)); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	fail = true
	snap, err := svc.Dispatch(ctx, ToggleSelection(101))
	if !errors.Is(err, nuclide.ErrMissingRecord) {
		t.Fatalf("expected resolve error, got %v", err)
	}
	if len(snap.Series) != 1 || snap.Series[0].ID != 100 {
		t.Fatalf("failed resolve must keep the previous plot: %+v", snap.Series)
	}
	if len(snap.Selected) != 2 {
		t.Fatalf("selection still reflects the intent: %v", snap.Selected)
	}
}

func TestDispatchReportsInvalidIntent(t *testing.T) {
	called := false
	resolver := resolverFunc(func(context.Context, []int) (series.Result, error) {
		called = true
		return series.Result{}, nil
	})
	svc := NewService(New(testCatalog(t), 10), resolver, nil)
	if _, err := svc.Dispatch(context.Background(), SetPage(1)); err != nil {
		t.Fatalf("set page: %v", err)
	}
	if _, err := svc.Dispatch(context.Background(), Intent{Type: IntentToggleSelection, ID: -1}); !errors.Is(err, ErrInvalidIntent) {
		t.Fatalf("expected ErrInvalidIntent, got %v", err)
	}
	if called {
		t.Fatalf("no resolve expected")
	}
}

func TestRefreshLogsSelectionAndStaleDiscard(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	var svc *Service
	resolver := resolverFunc(func(_ context.Context, ids []int) (series.Result, error) {
		if len(ids) == 1 {
			// Supersede this resolve before it completes.
			svc.View().BeginRefresh()
		}
		return resultFor(ids...), nil
	})
	svc = NewService(New(testCatalog(t), 10), resolver, zap.New(core))
	ctx := context.Background()
	if _, err := svc.Dispatch(ctx, ToggleSelection(101)); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if _, err := svc.Dispatch(ctx, ToggleSelection(100)); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	var selections []string
	for _, e := range logs.FilterMessage("resolve issued").All() {
		selections = append(selections, e.ContextMap()["selection"].(string))
	}
	if len(selections) != 2 || selections[0] != "101" || selections[1] != "100,101" {
		t.Fatalf("unexpected selection fingerprints %v", selections)
	}
	stale := logs.FilterMessage("discarded stale resolve").All()
	if len(stale) != 1 {
		t.Fatalf("expected one stale discard, got %d", len(stale))
	}
	fields := stale[0].ContextMap()
	if fields["generation"] != uint64(1) || fields["latest_issued"] != uint64(2) || fields["latest_applied"] != uint64(0) {
		t.Fatalf("unexpected stale discard fields %v", fields)
	}
}
