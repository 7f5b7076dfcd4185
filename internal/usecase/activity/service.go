package activity

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bizvet/bizvet/internal/domain"
)

const systemPrompt = "You are helping normalize online activity metrics across business types. " +
	"Given a short business description, output a single float weight representing " +
	"how much online visibility (Google reviews/photos) you would *expect* the business to have. " +
	"Restaurants, bars, hotels ≈ 1.8; retail ≈ 1.2; clinics or salons ≈ 1.0; " +
	"mechanics or professional offices ≈ 0.6; industrial or B2B ≈ 0.4. " +
	"Only respond with the number, nothing else."

const (
	weightTemperature = 0.2
	maxWeightTokens   = 10

	// Expected visibility weights are clamped to a sane band. Unusable
	// answers fall back to the neutral weight.
	neutralWeight = 1.0
	minWeight     = 0.3
	maxWeight     = 2.5

	// minDivisor keeps the adjustment from exploding on tiny weights.
	minDivisor = 0.1
)

// Raw activity blend: review volume dominates, photos and rating refine.
const (
	reviewsCap   = 300.0
	photosCap    = 100.0
	reviewsShare = 0.6
	photosShare  = 0.25
	ratingShare  = 0.15
)

// Config holds the low-activity cutoff.
type Config struct {
	LowThreshold float64
}

// Service grades observed online activity against the visibility the model
// expects for the business category.
type Service struct {
	completer Completer
	cfg       Config
	logger    *zap.Logger
}

// New creates an activity grading service.
func New(completer Completer, cfg Config, logger *zap.Logger) *Service {
	return &Service{completer: completer, cfg: cfg, logger: logger}
}

// Signal computes the adjusted activity level for one record.
func (s *Service) Signal(ctx context.Context, rec domain.BusinessRecord) domain.ActivitySignal {
	weight := s.expectedWeight(ctx, visibilityInput(rec))

	adjusted := rawScore(rec) / math.Max(weight, minDivisor)
	adjusted = math.Max(0, math.Min(adjusted, 1))

	if adjusted <= s.cfg.LowThreshold {
		return domain.ActivityLow
	}
	return domain.ActivityNormal
}

// SignalBatch computes signals for all records concurrently. Result i
// corresponds to record i.
func (s *Service) SignalBatch(ctx context.Context, records []domain.BusinessRecord) []domain.ActivitySignal {
	signals := make([]domain.ActivitySignal, len(records))

	g, gctx := errgroup.WithContext(ctx)
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			signals[i] = s.Signal(gctx, rec)
			return nil
		})
	}
	_ = g.Wait()

	return signals
}

// expectedWeight asks the model how much online visibility the business
// category should have. Failures and unparseable answers yield the neutral
// weight, valid answers are clamped to [minWeight, maxWeight].
func (s *Service) expectedWeight(ctx context.Context, description string) float64 {
	answer, err := s.completer.Complete(ctx, domain.CompletionRequest{
		System:      systemPrompt,
		User:        fmt.Sprintf("Description: %s\nExpected weight:", description),
		Temperature: weightTemperature,
		MaxTokens:   maxWeightTokens,
	})
	if err != nil {
		s.logger.Warn("visibility weight failed",
			zap.String("description", description),
			zap.Error(err),
		)
		return neutralWeight
	}

	val, err := strconv.ParseFloat(answer, 64)
	if err != nil {
		s.logger.Warn("visibility weight not numeric",
			zap.String("description", description),
			zap.String("answer", answer),
		)
		return neutralWeight
	}

	return math.Max(minWeight, math.Min(val, maxWeight))
}

// visibilityInput joins the category and description for the weight prompt.
func visibilityInput(rec domain.BusinessRecord) string {
	combo := strings.TrimSpace(strings.TrimSpace(rec.Category) + " " + strings.TrimSpace(rec.Description))
	if combo == "" {
		return "Unknown"
	}
	return combo
}

// rawScore blends review count, photo count, and rating into [0, 1] using
// conservative caps.
func rawScore(rec domain.BusinessRecord) float64 {
	reviews := math.Min(math.Max(float64(rec.ReviewCount), 0), reviewsCap)
	photos := math.Min(float64(parsePhotoCount(rec.PhotoCount)), photosCap)

	var ratingNorm float64
	if rec.Rating != 0 {
		ratingNorm = math.Max(0, math.Min((rec.Rating-3)/2, 1))
	}

	return reviewsShare*reviews/reviewsCap + photosShare*photos/photosCap + ratingShare*ratingNorm
}

// parsePhotoCount reads counts like "708", "1,024" or "50+". Anything else
// is zero.
func parsePhotoCount(value string) int {
	s := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	s = strings.TrimSuffix(s, "+")

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
