package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bizvet/bizvet/internal/domain"
)

// proxy is the consumer interface for the extraction proxy (ISP).
type proxy interface {
	Post(ctx context.Context, url string, body []byte) ([]byte, error)
	Get(ctx context.Context, url string) ([]byte, error)
}

// Config holds registry endpoint settings.
type Config struct {
	SearchURL     string
	DetailURL     string
	ResultLimit   int
	SearchTimeout time.Duration
	DetailTimeout time.Duration
}

// Repo implements usecase/registry.Registry against the public corporate registry.
type Repo struct {
	proxy proxy
	cfg   Config
}

// New creates a registry repository.
func New(p proxy, cfg Config) *Repo {
	return &Repo{proxy: p, cfg: cfg}
}

// Search queries the registry by business name and returns the matching hits.
func (r *Repo) Search(ctx context.Context, name string) ([]domain.RegistryHit, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.SearchTimeout)
	defer cancel()

	payload, err := buildSearchPayload(name, r.cfg.ResultLimit)
	if err != nil {
		return nil, err
	}

	body, err := r.proxy.Post(ctx, r.cfg.SearchURL, payload)
	if err != nil {
		return nil, fmt.Errorf("registry search %q: %w", name, err)
	}

	hits, err := parseSearchResponse(body)
	if err != nil {
		return nil, fmt.Errorf("registry search %q: %w", name, err)
	}
	return hits, nil
}

// Address fetches the street address for a registration index. A missing
// address field is not an error and yields an empty string.
func (r *Repo) Address(ctx context.Context, registrationIndex string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.DetailTimeout)
	defer cancel()

	url := strings.TrimSuffix(r.cfg.DetailURL, "/") + "/" + registrationIndex

	body, err := r.proxy.Get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("registry detail %s: %w", registrationIndex, err)
	}

	addr, err := parseDetailResponse(body)
	if err != nil {
		return "", fmt.Errorf("registry detail %s: %w", registrationIndex, err)
	}
	return addr, nil
}
