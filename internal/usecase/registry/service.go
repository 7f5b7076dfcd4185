package registry

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bizvet/bizvet/internal/domain"
)

// Service gathers registry candidates for batches of expanded queries. Both
// fetch stages fan out across the entire batch and lean on the registry
// facade's rate limiter for admission control.
type Service struct {
	registry Registry
	logger   *zap.Logger
}

func NewService(registry Registry, logger *zap.Logger) *Service {
	return &Service{
		registry: registry,
		logger:   logger,
	}
}

// FetchBatch resolves registry candidates for every expansion. Result i holds
// the candidates for expansion i in search-hit order: original-query hits
// first, then alternative-query hits. Records with no usable hits get a nil
// slice. Failed calls degrade the affected record instead of failing the
// batch.
func (s *Service) FetchBatch(ctx context.Context, expansions []domain.QueryExpansion) [][]domain.Candidate {
	type searchSlot struct {
		record int
		query  string
	}
	slots := make([]searchSlot, 0, 2*len(expansions))
	for i, exp := range expansions {
		for _, q := range exp.Queries() {
			slots = append(slots, searchSlot{record: i, query: q})
		}
	}

	hitsBySlot := make([][]domain.RegistryHit, len(slots))
	g, gctx := errgroup.WithContext(ctx)
	for si, slot := range slots {
		si, slot := si, slot
		g.Go(func() error {
			hits, err := s.registry.Search(gctx, slot.query)
			if err != nil {
				s.logger.Warn("registry search failed",
					zap.String("query", slot.query),
					zap.Error(err))
				return nil
			}
			hitsBySlot[si] = hits
			return nil
		})
	}
	_ = g.Wait()

	// Merge both query results per record. Hits without a registration index
	// cannot be enriched and are dropped. Duplicate hits are kept as they
	// are; the matchers only need one of them to line up.
	type lookup struct {
		record int
		hit    domain.RegistryHit
	}
	var lookups []lookup
	for si, slot := range slots {
		for _, hit := range hitsBySlot[si] {
			if hit.RegistrationIndex == "" {
				continue
			}
			lookups = append(lookups, lookup{record: slot.record, hit: hit})
		}
	}

	// Address enrichment is flattened across the whole batch so no record
	// waits on another. A failed lookup keeps the candidate with an empty
	// address.
	addresses := make([]string, len(lookups))
	g, gctx = errgroup.WithContext(ctx)
	for li, lk := range lookups {
		li, lk := li, lk
		g.Go(func() error {
			addr, err := s.registry.Address(gctx, lk.hit.RegistrationIndex)
			if err != nil {
				s.logger.Warn("registry address lookup failed",
					zap.String("registration_index", lk.hit.RegistrationIndex),
					zap.Error(err))
				return nil
			}
			addresses[li] = addr
			return nil
		})
	}
	_ = g.Wait()

	candidates := make([][]domain.Candidate, len(expansions))
	for li, lk := range lookups {
		candidates[lk.record] = append(candidates[lk.record], domain.Candidate{
			Name:    lk.hit.Name,
			Address: addresses[li],
		})
	}
	return candidates
}
