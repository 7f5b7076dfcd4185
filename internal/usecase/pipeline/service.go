package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bizvet/bizvet/internal/domain"
	"github.com/bizvet/bizvet/internal/metrics"
)

const defaultBatchSize = 15

// Config holds pipeline tuning knobs.
type Config struct {
	// BatchSize is the number of records processed per batch. Zero or
	// negative falls back to the default.
	BatchSize int
}

// Service drives records through expansion, candidate fetch, and decision,
// one fixed-size batch at a time.
type Service struct {
	expander Expander
	fetcher  CandidateFetcher
	decider  Decider
	cfg      Config
	logger   *zap.Logger
}

func NewService(
	expander Expander,
	fetcher CandidateFetcher,
	decider Decider,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	return &Service{
		expander: expander,
		fetcher:  fetcher,
		decider:  decider,
		cfg:      cfg,
		logger:   logger,
	}
}

// Summary aggregates verdict counts across one run.
type Summary struct {
	Records     int
	Kept        int
	Classical   int
	Semantic    int
	LowActivity int
	Batches     int
}

// ProcessBatch runs one batch through every stage and returns its verdicts,
// one per record in input order.
func (s *Service) ProcessBatch(ctx context.Context, records []domain.BusinessRecord) []domain.MatchingResult {
	start := time.Now()

	names := make([]string, len(records))
	for i, rec := range records {
		names[i] = rec.Name
	}

	expansions := s.expander.ExpandBatch(ctx, names)
	candidates := s.fetcher.FetchBatch(ctx, expansions)
	results := s.decider.DecideBatch(ctx, records, candidates)

	for _, res := range results {
		metrics.RecordsProcessedTotal.Inc()
		verdict := "drop"
		if res.Keep {
			verdict = "keep"
		}
		metrics.VerdictsTotal.WithLabelValues(verdict).Inc()
	}

	s.logger.Info("batch processed",
		zap.Int("records", len(records)),
		zap.Duration("duration", time.Since(start)),
	)

	return results
}

// Run processes all records in batches, appending each batch's verdicts to
// the sink before starting the next. It stops at the first sink error or
// context cancellation and returns the summary of what completed.
func (s *Service) Run(ctx context.Context, records []domain.BusinessRecord, sink Sink) (Summary, error) {
	var summary Summary

	for start := 0; start < len(records); start += s.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		end := start + s.cfg.BatchSize
		if end > len(records) {
			end = len(records)
		}

		results := s.ProcessBatch(ctx, records[start:end])
		if err := sink.Append(results); err != nil {
			return summary, fmt.Errorf("append results: %w", err)
		}

		summary.Batches++
		for _, res := range results {
			summary.Records++
			if res.Keep {
				summary.Kept++
			}
			if res.ClassicalMatch {
				summary.Classical++
			}
			if res.SemanticMatch {
				summary.Semantic++
			}
			if res.Activity == domain.ActivityLow {
				summary.LowActivity++
			}
		}
	}

	return summary, nil
}
