package vahan

import (
	"context"
	"log/slog"
	"time"
	"vahanpulse-backend/lib/tabular"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

// Tag columns added to every scraped row so a merged dataset stays
// traceable back to the filter combination that produced it.
const (
	filterColumnPrefix = "Filter_"
	scrapedDateColumn  = "Scraped_Date"
)

// sweepInterval paces combinations so the sweep stays polite to the
// portal. One request every two seconds mirrors human-speed usage.
const sweepInterval = 2 * time.Second

// Combinations expands per-control option lists into the full
// cartesian product, varying the last dimension fastest. Order holds
// the dimension labels; labels missing from dims are skipped.
func Combinations(dims map[string][]string, order []string) []Selection {
	combos := []Selection{{}}
	for _, label := range order {
		options := dims[label]
		if len(options) == 0 {
			continue
		}
		next := make([]Selection, 0, len(combos)*len(options))
		for _, combo := range combos {
			for _, opt := range options {
				expanded := make(Selection, len(combo)+1)
				for k, v := range combo {
					expanded[k] = v
				}
				expanded[label] = opt
				next = append(next, expanded)
			}
		}
		combos = next
	}
	if len(combos) == 1 && len(combos[0]) == 0 {
		return nil
	}
	return combos
}

type combinationRunner interface {
	runCombination(ctx context.Context, sel Selection) Table
}

func (s *Scraper) runCombination(ctx context.Context, sel Selection) Table {
	return s.ApplyFilters(ctx, sel)
}

// SweepCombinations applies every combination in turn and merges the
// results into one table, tagging each row with its filter values and
// the scrape date. Combinations that fail or come back empty are
// logged and skipped; the sweep only aborts when the context does.
func (s *Scraper) SweepCombinations(ctx context.Context, combos []Selection) (tabular.Table, error) {
	ctx, span := tracer.Start(ctx, "vahan.SweepCombinations")
	defer span.End()
	span.SetAttributes(attribute.Int("combinations", len(combos)))

	limiter := rate.NewLimiter(rate.Every(sweepInterval), 1)
	return sweep(ctx, s, combos, limiter)
}

func sweep(ctx context.Context, runner combinationRunner, combos []Selection, limiter *rate.Limiter) (tabular.Table, error) {
	var merged tabular.Table
	scraped, skipped := 0, 0
	scrapeDate := time.Now().Format("2006-01-02")

	for i, combo := range combos {
		if err := limiter.Wait(ctx); err != nil {
			return merged, err
		}
		slog.InfoContext(ctx, "scraping combination",
			"index", i+1, "total", len(combos), "filters", combo)

		result := runner.runCombination(ctx, combo)
		if result.Status != StatusSuccess || result.IsEmpty() {
			skipped++
			slog.WarnContext(ctx, "combination skipped",
				"filters", combo, "status", result.Status, "err", result.Err)
			continue
		}

		merged.Append(tagRows(result, combo, scrapeDate))
		scraped++
	}

	slog.InfoContext(ctx, "sweep finished",
		"scraped", scraped, "skipped", skipped, "rows", len(merged.Rows))
	return merged, nil
}

// tagRows converts an extracted table into tabular form with one
// Filter_<Label> column per applied filter plus the scrape date. Rows
// wider than the header are truncated, narrower ones padded, so the
// merge stays rectangular.
func tagRows(result Table, combo Selection, scrapeDate string) tabular.Table {
	headers := append([]string(nil), result.Headers...)
	for _, label := range controlOrder {
		if _, ok := combo[label]; ok {
			headers = append(headers, filterColumnPrefix+sanitizeColumnLabel(label))
		}
	}
	headers = append(headers, scrapedDateColumn)

	out := tabular.Table{Headers: headers}
	for _, row := range result.Rows {
		cells := make([]string, len(result.Headers))
		copy(cells, row)
		for _, label := range controlOrder {
			if value, ok := combo[label]; ok {
				cells = append(cells, value)
			}
		}
		cells = append(cells, scrapeDate)
		out.Rows = append(out.Rows, cells)
	}
	return out
}

// sanitizeColumnLabel turns a control label into a column-safe token,
// e.g. "Vehicle Type" -> "Vehicle_Type".
func sanitizeColumnLabel(label string) string {
	out := make([]rune, 0, len(label))
	for _, r := range label {
		if r == ' ' {
			out = append(out, '_')
		} else {
			out = append(out, r)
		}
	}
	return string(out)
}
