package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/bizvet/bizvet/internal/domain"
)

// outputHeader matches the columns the downstream report consumer expects.
var outputHeader = []string{"Name", "results", "resultsLLM", "resultsGoogleCheck", "overallResults"}

// Writer appends matching results to a CSV report. Every batch is flushed to
// disk as soon as it is appended, so an interrupted run keeps completed work.
type Writer struct {
	f  *os.File
	cw *csv.Writer
}

// NewWriter truncates the file at path and writes the report header.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(outputHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	return &Writer{f: f, cw: cw}, nil
}

// Append writes one batch of results and flushes it.
func (w *Writer) Append(results []domain.MatchingResult) error {
	for _, res := range results {
		row := []string{
			res.Name,
			strconv.FormatBool(res.ClassicalMatch),
			strconv.FormatBool(res.SemanticMatch),
			strconv.Itoa(int(res.Activity)),
			strconv.FormatBool(res.Keep),
		}
		if err := w.cw.Write(row); err != nil {
			return fmt.Errorf("write result row: %w", err)
		}
	}

	w.cw.Flush()
	if err := w.cw.Error(); err != nil {
		return fmt.Errorf("flush results: %w", err)
	}
	return nil
}

// Close flushes buffered rows and closes the file.
func (w *Writer) Close() error {
	w.cw.Flush()
	if err := w.cw.Error(); err != nil {
		w.f.Close()
		return fmt.Errorf("flush output: %w", err)
	}
	return w.f.Close()
}
