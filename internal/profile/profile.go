// Package profile computes per-column summaries shown on the column
// selection screen: fill rates, cardinality and numeric min/mean/max for
// columns that are mostly numeric.
package profile

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"cardstock/domain/cards"
)

// numericThreshold is the fraction of non-empty values that must parse as
// numbers before a column gets numeric summaries.
const numericThreshold = 0.6

// maxSampleRows caps how many rows feed each column summary.
const maxSampleRows = 500

// ColumnSummary describes one column of the dataset.
type ColumnSummary struct {
	Name        string
	NonEmpty    int
	UniqueCount int
	Numeric     bool
	Min         float64
	Mean        float64
	Max         float64
}

// Summarize profiles every column concurrently, one worker per column.
// Column order follows the dataset's discovery order.
func Summarize(ctx context.Context, dataset cards.Dataset) ([]ColumnSummary, error) {
	log.Printf("[Summarize] Profiling %d columns over %d rows", len(dataset.Columns), len(dataset.Rows))
	summaries := make([]ColumnSummary, len(dataset.Columns))

	g, ctx := errgroup.WithContext(ctx)
	for i, column := range dataset.Columns {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			summaries[i] = summarizeColumn(dataset, column)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func summarizeColumn(dataset cards.Dataset, column string) ColumnSummary {
	summary := ColumnSummary{Name: column}

	sample := len(dataset.Rows)
	if sample > maxSampleRows {
		sample = maxSampleRows
	}

	unique := make(map[string]bool)
	numbers := make([]float64, 0, sample)
	for _, row := range dataset.Rows[:sample] {
		value := strings.TrimSpace(row.Value(column))
		if value == "" {
			continue
		}
		summary.NonEmpty++
		unique[value] = true
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			numbers = append(numbers, n)
		}
	}
	summary.UniqueCount = len(unique)

	if summary.NonEmpty == 0 {
		return summary
	}
	if float64(len(numbers))/float64(summary.NonEmpty) < numericThreshold {
		return summary
	}

	min, err := stats.Min(numbers)
	if err != nil {
		return summary
	}
	mean, err := stats.Mean(numbers)
	if err != nil {
		return summary
	}
	max, err := stats.Max(numbers)
	if err != nil {
		return summary
	}

	summary.Numeric = true
	summary.Min = min
	summary.Mean = mean
	summary.Max = max
	return summary
}
