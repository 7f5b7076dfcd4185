package domain

import "strings"

// QueryExpansion pairs a record's original name with one generated
// alternative search string meant to improve registry search recall.
// Both queries are always non-empty.
type QueryExpansion struct {
	Original    string
	Alternative string
}

// NewQueryExpansion builds an expansion, falling back to the original
// query when the generated alternative is blank.
func NewQueryExpansion(original, alternative string) QueryExpansion {
	alternative = strings.TrimSpace(alternative)
	if alternative == "" {
		alternative = original
	}
	return QueryExpansion{Original: original, Alternative: alternative}
}

// Queries returns both search strings in dispatch order.
func (q QueryExpansion) Queries() [2]string {
	return [2]string{q.Original, q.Alternative}
}
