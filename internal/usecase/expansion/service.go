package expansion

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bizvet/bizvet/internal/domain"
)

const systemPrompt = "You generate short, realistic business name alternatives."

const promptTemplate = `You are given a business name. There is a business registry with a search interface which allows us to search for business names. Other than the provided name, come up with EXACTLY ONE alternative string to query that will be likely to reveal the correct business in the interface's search response. You should try to identify the root substring of the original name that is most likely to reveal the correct business in the interface's search response. For example, if the original name is "Condal Tapas Restaurant & Rooftop Lounge", then the suggested alternative should be "Condal".

Return JUST the text of the suggested alternative

Business name: %s
`

const expansionTemperature = 0.2

// Service expands business names into registry query pairs.
type Service struct {
	completer Completer
	logger    *zap.Logger
}

// New creates a query expansion service.
func New(completer Completer, logger *zap.Logger) *Service {
	return &Service{completer: completer, logger: logger}
}

// Expand asks the model for one alternative query for the given name.
// A failed request or a blank answer falls back to the original name.
func (s *Service) Expand(ctx context.Context, name string) domain.QueryExpansion {
	answer, err := s.completer.Complete(ctx, domain.CompletionRequest{
		System:      systemPrompt,
		User:        fmt.Sprintf(promptTemplate, name),
		Temperature: expansionTemperature,
	})
	if err != nil {
		s.logger.Warn("query expansion failed",
			zap.String("name", name),
			zap.Error(err),
		)
		return domain.NewQueryExpansion(name, name)
	}

	return domain.NewQueryExpansion(name, answer)
}

// ExpandBatch expands all names concurrently. Result i holds the expansion
// for name i.
func (s *Service) ExpandBatch(ctx context.Context, names []string) []domain.QueryExpansion {
	expansions := make([]domain.QueryExpansion, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			expansions[i] = s.Expand(gctx, name)
			return nil
		})
	}
	_ = g.Wait()

	return expansions
}
