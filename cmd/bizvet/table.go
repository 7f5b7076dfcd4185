package main

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	pipelineuc "github.com/bizvet/bizvet/internal/usecase/pipeline"
)

// renderSummary formats the run outcome as a terminal table.
func renderSummary(s pipelineuc.Summary, tokens int64, elapsed time.Duration) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	tw.AppendHeader(table.Row{"Metric", "Value"})
	tw.AppendRows([]table.Row{
		{"Records", s.Records},
		{"Kept", s.Kept},
		{"Dropped", s.Records - s.Kept},
		{"Fuzzy matches", s.Classical},
		{"Semantic matches", s.Semantic},
		{"Low activity", s.LowActivity},
		{"Batches", s.Batches},
		{"Completion tokens", tokens},
		{"Duration", elapsed.Round(time.Millisecond).String()},
	})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}
