package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"xsplot/internal/observability"
	"xsplot/internal/series"
)

// Resolver fetches the series for a selection.
type Resolver interface {
	Resolve(ctx context.Context, ids []int) (series.Result, error)
}

// Service drives a View: it applies intents and runs the resolves they call
// for, applying results last-write-wins by generation.
type Service struct {
	view     *View
	resolver Resolver
	logger   *zap.Logger
}

// NewService wires view to resolver.
func NewService(view *View, resolver Resolver, logger *zap.Logger) *Service {
	return &Service{view: view, resolver: resolver, logger: observability.OrNop(logger)}
}

// View returns the underlying view.
func (s *Service) View() *View { return s.view }

// Dispatch applies intent and, when the selection changed, resolves the new
// selection before returning. A failed resolve leaves the plotted series as
// they were and is returned to the caller.
func (s *Service) Dispatch(ctx context.Context, intent Intent) (Snapshot, error) {
	effect, err := s.view.Apply(intent)
	if err != nil {
		return Snapshot{}, err
	}
	if effect.Refetch {
		if err := s.Refresh(ctx); err != nil {
			return s.view.Snapshot(), err
		}
	}
	return s.view.Snapshot(), nil
}

// Refresh resolves the current selection and applies the result unless a
// newer refresh was issued meanwhile.
func (s *Service) Refresh(ctx context.Context) error {
	ref := s.view.BeginRefresh()
	s.logger.Debug("resolve issued",
		zap.Uint64("generation", ref.Generation),
		zap.String("selection", ref.Selection))
	res, err := s.resolver.Resolve(ctx, ref.IDs)
	if err != nil {
		s.logger.Error("resolve failed",
			zap.Uint64("generation", ref.Generation),
			zap.Ints("ids", ref.IDs),
			zap.Error(err))
		return fmt.Errorf("resolve selection: %w", err)
	}
	if !s.view.CompleteRefresh(ref.Generation, res) {
		issued, applied := s.view.Generation()
		s.logger.Debug("discarded stale resolve",
			zap.Uint64("generation", ref.Generation),
			zap.Uint64("latest_issued", issued),
			zap.Uint64("latest_applied", applied))
		return nil
	}
	if len(res.Failures) > 0 {
		s.logger.Warn("resolve degraded",
			zap.Uint64("generation", ref.Generation),
			zap.Int("entries", len(res.Entries)),
			zap.Int("failures", len(res.Failures)))
	}
	return nil
}
