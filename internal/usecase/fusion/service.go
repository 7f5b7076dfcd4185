package fusion

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bizvet/bizvet/internal/domain"
)

// Service runs all three evidence signals for a record and fuses them into
// the final keep decision.
type Service struct {
	classical ClassicalMatcher
	semantic  SemanticMatcher
	activity  ActivityChecker
	logger    *zap.Logger
}

func NewService(
	classical ClassicalMatcher,
	semantic SemanticMatcher,
	activity ActivityChecker,
	logger *zap.Logger,
) *Service {
	return &Service{
		classical: classical,
		semantic:  semantic,
		activity:  activity,
		logger:    logger,
	}
}

// Decide produces the verdict for one record. The semantic matcher and the
// activity checker each make a model call, so they run concurrently. The
// classical matcher is local and runs inline.
func (s *Service) Decide(
	ctx context.Context, rec domain.BusinessRecord, candidates []domain.Candidate,
) domain.MatchingResult {
	var (
		wg            sync.WaitGroup
		semanticMatch bool
		signal        domain.ActivitySignal
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		semanticMatch = s.semantic.Matches(ctx, rec.Name, rec.Street, candidates)
	}()
	go func() {
		defer wg.Done()
		signal = s.activity.Signal(ctx, rec)
	}()

	classicalMatch := s.classical.Matches(rec.Name, rec.Street, candidates)
	wg.Wait()

	result := domain.MatchingResult{
		Name:           rec.Name,
		ClassicalMatch: classicalMatch,
		SemanticMatch:  semanticMatch,
		Activity:       signal,
		Keep:           domain.Fuse(classicalMatch, semanticMatch, signal),
	}

	s.logger.Debug("verdict",
		zap.String("name", rec.Name),
		zap.Bool("classical_match", result.ClassicalMatch),
		zap.Bool("semantic_match", result.SemanticMatch),
		zap.String("activity", result.Activity.String()),
		zap.Bool("keep", result.Keep),
	)

	return result
}

// DecideBatch decides every record concurrently. Result i corresponds to
// record i. Records beyond the candidate list are decided with no candidates.
func (s *Service) DecideBatch(
	ctx context.Context, records []domain.BusinessRecord, candidates [][]domain.Candidate,
) []domain.MatchingResult {
	results := make([]domain.MatchingResult, len(records))

	g, gctx := errgroup.WithContext(ctx)
	for i, rec := range records {
		i, rec := i, rec
		var cands []domain.Candidate
		if i < len(candidates) {
			cands = candidates[i]
		}
		g.Go(func() error {
			results[i] = s.Decide(gctx, rec, cands)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
