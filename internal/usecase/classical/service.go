package classical

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/bizvet/bizvet/internal/domain"
)

// Config holds fuzzy matching weights and the decision threshold.
type Config struct {
	Threshold     float64 // 0..100
	NameWeight    float64
	AddressWeight float64
}

// Matcher scores registry candidates against a business with weighted fuzzy
// string similarity. It is deterministic and needs no network access.
type Matcher struct {
	cfg Config
}

// NewMatcher creates a classical fuzzy matcher.
func NewMatcher(cfg Config) *Matcher {
	return &Matcher{cfg: cfg}
}

// Score returns the weighted similarity of one candidate on a 0..100 scale.
// The name term is zero when the business name is empty, the address term
// when either address is empty.
func (m *Matcher) Score(name, address string, cand domain.Candidate) float64 {
	var nameScore, addrScore float64
	if name != "" {
		nameScore = float64(fuzzy.Ratio(strings.ToLower(name), strings.ToLower(cand.Name)))
	}
	if address != "" && cand.Address != "" {
		addrScore = float64(fuzzy.Ratio(strings.ToLower(address), strings.ToLower(cand.Address)))
	}

	return m.cfg.NameWeight*nameScore + m.cfg.AddressWeight*addrScore
}

// Matches reports whether any candidate reaches the threshold. It stops at
// the first hit.
func (m *Matcher) Matches(name, address string, candidates []domain.Candidate) bool {
	for _, cand := range candidates {
		if m.Score(name, address, cand) >= m.cfg.Threshold {
			return true
		}
	}
	return false
}
