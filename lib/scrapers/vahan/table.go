package vahan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"vahanpulse-backend/lib/browser"
	"vahanpulse-backend/lib/htmlutil"
	"vahanpulse-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
)

const reportPanelID = "combTablePnl"

// Status describes how a table extraction ended.
type Status string

const (
	StatusSuccess Status = "success"
	StatusTimeout Status = "timeout"
	StatusError   Status = "error"
)

// Table is one extracted report: flattened headers, data rows and the
// outcome of the extraction. Rows may be ragged when the portal emits
// rowspan-heavy markup; downstream alignment happens in the cleaner.
type Table struct {
	Headers []string
	Rows    [][]string
	Status  Status
	Err     string
}

func (t Table) IsEmpty() bool {
	return len(t.Rows) == 0
}

func errorTable(err error) Table {
	return Table{Status: StatusError, Err: err.Error()}
}

// Vehicle category codes the dashboard uses in its grouped header
// (two-wheelers by ignition/usage, three-wheelers, light/medium/heavy
// motor vehicles and goods carriers).
var knownCategoryCodes = map[string]bool{
	"2WIC": true, "2WN": true, "2WT": true,
	"3WN": true, "3WT": true,
	"LMV": true, "MMV": true, "HMV": true,
	"LGV": true, "MGV": true, "HGV": true,
	"TOTAL": true,
}

// skeletonHeaders is the minimal shape every report shares, used when
// the header markup is unrecognizable so the row data is still kept.
var skeletonHeaders = []string{"S No", "Vehicle Class", "Category 1", "Category 2", "Category 3", "Total"}

// ExtractTable reads the report table out of the current page. A
// missing or never-appearing table yields StatusTimeout; malformed
// markup yields StatusError. Both outcomes carry empty rows so sweeps
// can skip the combination and continue.
func (s *Scraper) ExtractTable(ctx context.Context) Table {
	ctx, span := tracer.Start(ctx, "vahan.ExtractTable")
	defer span.End()

	if err := s.closeOpenPanels(ctx); err != nil {
		return errorTable(err)
	}
	selector := "#" + reportPanelID + " table"
	if err := s.session.WaitVisible(ctx, selector); err != nil {
		if errors.Is(err, browser.ErrTimeout) {
			slog.WarnContext(ctx, "report table never appeared")
			return Table{Status: StatusTimeout, Err: "report table never became visible"}
		}
		return errorTable(err)
	}
	html, err := s.session.OuterHTML(ctx, selector)
	if err != nil {
		if errors.Is(err, browser.ErrTimeout) {
			return Table{Status: StatusTimeout, Err: err.Error()}
		}
		return errorTable(err)
	}

	table := parseReportTable(html)
	span.SetAttributes(
		attribute.String("status", string(table.Status)),
		attribute.Int("rows", len(table.Rows)),
	)
	slog.InfoContext(ctx, "extracted report table",
		"status", table.Status, "columns", len(table.Headers), "rows", len(table.Rows))
	return table
}

// parseReportTable turns raw table markup into a flattened Table. The
// portal renders a three-row grouped header (serial/class labels, then
// category group spans, then leaf category codes); flattening keeps
// the first two leaf labels from the top row and the leaf codes from
// the bottom row.
func parseReportTable(html string) Table {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return errorTable(fmt.Errorf("parse table html: %w", err))
	}

	headers := flattenHeader(headerRows(doc))
	if len(headers) == 0 {
		headers = simpleHeaders(doc)
	}
	if len(headers) == 0 {
		headers = append([]string(nil), skeletonHeaders...)
	}

	var rows [][]string
	doc.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		empty := true
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			text := cellText(td)
			if text != "" {
				empty = false
			}
			cells = append(cells, text)
		})
		// Spacer and decoration rows carry no data.
		if len(cells) == 0 || empty {
			return
		}
		rows = append(rows, cells)
	})

	return Table{Headers: headers, Rows: rows, Status: StatusSuccess}
}

// headerRows returns the cell texts of each thead row, preferring the
// dashboard's dedicated header element when present.
func headerRows(doc *goquery.Document) [][]string {
	head := doc.Find("thead#vchgroupTable_head")
	if head.Length() == 0 {
		head = doc.Find("thead")
	}
	trs := head.Find("tr[role=row]")
	if trs.Length() == 0 {
		trs = head.Find("tr")
	}
	var out [][]string
	trs.Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th").Each(func(_ int, th *goquery.Selection) {
			cells = append(cells, cellText(th))
		})
		out = append(out, cells)
	})
	return out
}

// cellText extracts the rendered text of a cell, stripped of the
// non-printable junk the portal's markup carries.
func cellText(sel *goquery.Selection) string {
	if len(sel.Nodes) == 0 {
		return ""
	}
	return htmlutil.CleanText(htmlutil.GetText(sel.Nodes[0]))
}

// flattenHeader collapses a grouped multi-row header into a flat list:
// the identifying labels from the first row plus the leaf category
// codes from the last row.
func flattenHeader(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	var headers []string
	if len(rows) >= 2 {
		for i, cell := range rows[0] {
			if i >= 2 {
				break
			}
			if label, ok := leafLabel(cell); ok {
				headers = append(headers, label)
			}
		}
		for _, cell := range rows[len(rows)-1] {
			if label, ok := leafLabel(cell); ok {
				headers = append(headers, label)
			}
		}
	} else {
		for _, cell := range rows[0] {
			if label, ok := leafLabel(cell); ok {
				headers = append(headers, label)
			}
		}
	}
	return dedupeHeaders(headers)
}

// leafLabel decides whether a header cell is a usable flat label and
// normalizes it. Group headers like "TWO WHEELER(NT)" span columns and
// are dropped; anything mentioning TOTAL collapses to the canonical
// TOTAL column.
func leafLabel(cell string) (string, bool) {
	text := textutil.CollapseWhitespace(cell)
	if text == "" {
		return "", false
	}
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "S NO"), upper == "SNO", upper == "SR NO":
		return "S No", true
	case strings.Contains(upper, "VEHICLE CLASS"):
		return "Vehicle Class", true
	case knownCategoryCodes[upper]:
		return upper, true
	case strings.Contains(upper, "TOTAL"):
		return "TOTAL", true
	case len(text) <= 10:
		return text, true
	}
	return "", false
}

func dedupeHeaders(headers []string) []string {
	seen := make(map[string]bool, len(headers))
	out := headers[:0]
	for _, h := range headers {
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}

// simpleHeaders is the fallback for flat single-row headers.
func simpleHeaders(doc *goquery.Document) []string {
	var headers []string
	doc.Find("th").Each(func(_ int, th *goquery.Selection) {
		if text := cellText(th); text != "" {
			headers = append(headers, text)
		}
	})
	return dedupeHeaders(headers)
}
