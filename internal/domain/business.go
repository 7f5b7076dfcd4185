package domain

import (
	"fmt"
	"strings"
)

// BusinessRecord is one scraped listing to verify. Zero values stand for
// columns absent in the source data; only Name is required. Records are
// immutable once loaded.
type BusinessRecord struct {
	Name        string
	Street      string
	Description string
	Category    string  // the listing's "main type"
	ReviewCount int
	Rating      float64 // 0 when absent; listing scale is 0-5
	PhotoCount  string  // raw listing value, e.g. "708+"
}

// Normalize trims the name and reports whether the record is usable.
// A record without a name cannot be searched and is rejected at the
// input boundary.
func (r BusinessRecord) Normalize() (BusinessRecord, error) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return BusinessRecord{}, fmt.Errorf("business record: %w", ErrMissingName)
	}
	return r, nil
}
