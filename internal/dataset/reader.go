package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/bizvet/bizvet/internal/domain"
)

// Input column names as exported by the listing scraper.
const (
	colName        = "Name"
	colStreet      = "Street 1"
	colDescription = "Description 1"
	colCategory    = "Main type"
	colReviews     = "Reviews count"
	colRating      = "Reviews rating"
	colPhotos      = "Photos count"
)

// Reader loads business records from a scraped listing CSV. Numeric cells
// are parsed leniently since the scraper emits formats like "1,234" and
// leaves cells empty.
type Reader struct {
	path    string
	maxRows int
	logger  *zap.Logger
}

// NewReader creates a reader for the file at path. maxRows caps the number
// of records loaded; zero or negative means no cap.
func NewReader(path string, maxRows int, logger *zap.Logger) *Reader {
	return &Reader{path: path, maxRows: maxRows, logger: logger}
}

// Read loads all usable records. Rows without a name cannot be verified and
// are skipped with a warning instead of failing the load.
func (r *Reader) Read() ([]domain.BusinessRecord, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	if _, ok := cols[colName]; !ok {
		return nil, fmt.Errorf("input is missing the %q column", colName)
	}

	var records []domain.BusinessRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}

		field := func(col string) string {
			idx, ok := cols[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		rec, err := domain.BusinessRecord{
			Name:        field(colName),
			Street:      field(colStreet),
			Description: field(colDescription),
			Category:    field(colCategory),
			ReviewCount: parseCount(field(colReviews)),
			Rating:      parseRating(field(colRating)),
			PhotoCount:  field(colPhotos),
		}.Normalize()
		if err != nil {
			r.logger.Warn("skipping row without a name", zap.Int("row", line))
			continue
		}

		records = append(records, rec)
		if r.maxRows > 0 && len(records) >= r.maxRows {
			r.logger.Info("row cap reached", zap.Int("max_rows", r.maxRows))
			break
		}
	}

	return records, nil
}

// parseCount reads an integer cell, tolerating thousands separators and
// float-formatted exports. Unparseable or negative cells count as zero.
func parseCount(value string) int {
	if value == "" {
		return 0
	}
	value = strings.ReplaceAll(value, ",", "")
	if n, err := strconv.Atoi(value); err == nil && n >= 0 {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil && f >= 0 {
		return int(f)
	}
	return 0
}

func parseRating(value string) float64 {
	f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
