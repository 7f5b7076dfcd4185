package fusion

import (
	"context"

	"github.com/bizvet/bizvet/internal/domain"
)

// ClassicalMatcher scores candidates with deterministic fuzzy similarity.
type ClassicalMatcher interface {
	Matches(name, address string, candidates []domain.Candidate) bool
}

// SemanticMatcher asks a language model whether any candidate refers to the
// record's location.
type SemanticMatcher interface {
	Matches(ctx context.Context, name, address string, candidates []domain.Candidate) bool
}

// ActivityChecker classifies the record's online engagement level.
type ActivityChecker interface {
	Signal(ctx context.Context, record domain.BusinessRecord) domain.ActivitySignal
}
