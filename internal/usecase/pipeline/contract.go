package pipeline

import (
	"context"

	"github.com/bizvet/bizvet/internal/domain"
)

// Expander derives alternative registry queries for record names.
type Expander interface {
	ExpandBatch(ctx context.Context, names []string) []domain.QueryExpansion
}

// CandidateFetcher resolves registry candidates for expanded queries.
type CandidateFetcher interface {
	FetchBatch(ctx context.Context, expansions []domain.QueryExpansion) [][]domain.Candidate
}

// Decider produces the final verdict for every record in a batch.
type Decider interface {
	DecideBatch(
		ctx context.Context, records []domain.BusinessRecord, candidates [][]domain.Candidate,
	) []domain.MatchingResult
}

// Sink receives finished verdicts batch by batch.
type Sink interface {
	Append(results []domain.MatchingResult) error
}
