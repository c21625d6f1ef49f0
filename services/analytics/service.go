package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vahanpulse-backend/lib/tabular"
)

// Service runs the cleaning -> growth -> insights pipeline.
type Service struct{}

func NewService() Service {
	return Service{}
}

// LoadCSV reads a previously scraped dataset from disk.
func (Service) LoadCSV(path string) (tabular.Table, error) {
	t, err := tabular.ReadCSV(path)
	if err != nil {
		return tabular.Table{}, fmt.Errorf("load dataset %q: %w", path, err)
	}
	return t, nil
}

func (Service) Clean(ctx context.Context, t tabular.Table) ([]Row, error) {
	return Clean(ctx, t)
}

func (Service) Growth(ctx context.Context, rows []Row) GrowthReport {
	return Growth(ctx, rows)
}

func (Service) Insights(ctx context.Context, rows []Row, growth GrowthReport) Insights {
	return GenerateInsights(ctx, rows, growth)
}

// ProcessAll runs the full pipeline over a raw table.
func (s Service) ProcessAll(ctx context.Context, t tabular.Table) (ProcessingResult, error) {
	ctx, span := tracer.Start(ctx, "analytics.ProcessAll")
	defer span.End()

	start := time.Now()
	rows, err := s.Clean(ctx, t)
	if err != nil {
		return ProcessingResult{}, err
	}
	growth := s.Growth(ctx, rows)
	insights := s.Insights(ctx, rows, growth)

	result := ProcessingResult{
		Rows:             rows,
		Growth:           growth,
		Insights:         insights,
		RecordsProcessed: len(rows),
		Elapsed:          time.Since(start),
	}
	slog.InfoContext(ctx, "pipeline complete",
		"records", len(rows), "elapsed", result.Elapsed)
	return result, nil
}
