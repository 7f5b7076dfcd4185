package semantic

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bizvet/bizvet/internal/domain"
)

const promptTemplate = `You are given a target address and a list of candidate addresses.

Goal: Determine if any candidate address likely corresponds to the SAME real-world location as the target address. An exact string match is NOT required. Consider common variations, abbreviations, suite/unit numbers, formatting differences, or nearby equivalences that strongly indicate the same place.

Target address:
%s

Candidate addresses:
%s

If there is enough evidence that at least one candidate is likely referring to the target location, respond with ONLY "YES". Otherwise, respond with ONLY "NO".`

// maxAnswerTokens bounds the reply, which is a bare YES or NO.
const maxAnswerTokens = 3

// Service asks the model whether any candidate shares the target location.
type Service struct {
	completer Completer
	logger    *zap.Logger
}

// New creates a semantic matching service.
func New(completer Completer, logger *zap.Logger) *Service {
	return &Service{completer: completer, logger: logger}
}

// Matches reports whether the model affirms a location match. An empty
// candidate list or a failed request counts as no match.
func (s *Service) Matches(ctx context.Context, name, address string, candidates []domain.Candidate) bool {
	if len(candidates) == 0 {
		return false
	}

	lines := make([]string, len(candidates))
	for i, cand := range candidates {
		lines[i] = "- " + cand.Address
	}

	answer, err := s.completer.Complete(ctx, domain.CompletionRequest{
		User:      fmt.Sprintf(promptTemplate, address, strings.Join(lines, "\n")),
		MaxTokens: maxAnswerTokens,
	})
	if err != nil {
		s.logger.Warn("semantic match failed",
			zap.String("name", name),
			zap.Error(err),
		)
		return false
	}

	return strings.Contains(strings.ToUpper(answer), "YES")
}

// MatchBatch runs Matches for every record concurrently. Result i corresponds
// to record i. Records without candidates are skipped.
func (s *Service) MatchBatch(
	ctx context.Context, records []domain.BusinessRecord, candidates [][]domain.Candidate,
) []bool {
	results := make([]bool, len(records))

	g, gctx := errgroup.WithContext(ctx)
	for i, rec := range records {
		if i >= len(candidates) || len(candidates[i]) == 0 {
			continue
		}
		i, rec := i, rec
		cands := candidates[i]
		g.Go(func() error {
			results[i] = s.Matches(gctx, rec.Name, rec.Street, cands)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
