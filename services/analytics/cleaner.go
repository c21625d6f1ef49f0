package analytics

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"vahanpulse-backend/lib/tabular"
	"vahanpulse-backend/lib/textutil"

	"go.opentelemetry.io/otel/attribute"
)

// ErrNoData is returned when a table has no usable rows at all.
var ErrNoData = errors.New("no data to clean")

const (
	unknownState   = "Unknown State"
	unknownVehicle = "UNKNOWN VEHICLE"
	unknownYear    = 0
)

// vehicleCategoryPatterns buckets raw vehicle-class names into coarse
// categories when the source table carries no category of its own.
// Checked in order; first match wins.
var vehicleCategoryPatterns = []struct {
	category string
	tokens   []string
}{
	{"2W", []string{"MOTOR CYCLE", "SCOOTER", "M-CYCLE", "MOPED", "MOTORCYCLE"}},
	{"3W", []string{"AUTO RICKSHAW", "THREE WHEELER", "3W", "E-RICKSHAW"}},
	{"4W+", []string{"CAR", "TRUCK", "BUS", "LMV", "MMV", "HMV", "MOTOR CAB", "GOODS"}},
}

var quarterPattern = regexp.MustCompile(`\bQ([1-4])\b`)

// Clean converts a raw scraped table into typed rows: numeric
// coercion, year and quarter extraction, name normalization, missing
// value fills and deduplication. Cleaning is idempotent: feeding the
// output (via ToTable) back in produces identical rows.
func Clean(ctx context.Context, t tabular.Table) ([]Row, error) {
	ctx, span := tracer.Start(ctx, "analytics.Clean")
	defer span.End()

	if t.IsEmpty() {
		return nil, ErrNoData
	}

	stateCol := findColumn(t, "Filter_State", "State")
	yearCol := findColumn(t, "Filter_Year", "Year")
	quarterCol := findColumn(t, "Filter_Quarter", "Quarter")
	classCol := findColumn(t, "Vehicle Class", "Vehicle_Class")
	categoryCol := findColumn(t, "Vehicle_Category", "Category")
	metaCols := metaColumns(t, stateCol, yearCol, quarterCol, classCol, categoryCol)

	var rows []Row
	seen := make(map[string]bool)
	dropped := 0

	for _, raw := range t.Rows {
		if allEmpty(raw) {
			dropped++
			continue
		}
		row := Row{
			State:        cleanPlaceName(cell(t, raw, stateCol)),
			Year:         cleanYear(cell(t, raw, yearCol)),
			Quarter:      cleanQuarter(cell(t, raw, quarterCol), cell(t, raw, yearCol)),
			VehicleClass: cleanClassName(cell(t, raw, classCol)),
			Counts:       map[string]int64{},
		}
		for _, col := range NumericColumns {
			if idx := t.ColumnIndex(col); idx >= 0 {
				row.Counts[col] = parseCount(cell(t, raw, idx))
			}
		}
		if row.State == "" {
			row.State = unknownState
		}
		if row.VehicleClass == "" {
			row.VehicleClass = unknownVehicle
		}
		row.Category = cleanCategory(cell(t, raw, categoryCol), row.VehicleClass)
		for idx, name := range metaCols {
			if v := strings.TrimSpace(cell(t, raw, idx)); v != "" {
				if row.Meta == nil {
					row.Meta = map[string]string{}
				}
				row.Meta[name] = v
			}
		}

		key := dedupKey(row, raw)
		if seen[key] {
			dropped++
			continue
		}
		seen[key] = true
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrNoData
	}
	span.SetAttributes(
		attribute.Int("rows_in", len(t.Rows)),
		attribute.Int("rows_out", len(rows)),
	)
	slog.InfoContext(ctx, "cleaned dataset",
		"rows_in", len(t.Rows), "rows_out", len(rows), "dropped", dropped)
	return rows, nil
}

// ToTable renders cleaned rows back into tabular form, the shape Clean
// would accept again and the shape CSV export uses.
func ToTable(rows []Row) tabular.Table {
	hasQuarter := false
	present := map[string]bool{}
	metaSet := map[string]bool{}
	for _, row := range rows {
		if row.Quarter != "" {
			hasQuarter = true
		}
		for col := range row.Counts {
			present[col] = true
		}
		for col := range row.Meta {
			metaSet[col] = true
		}
	}

	headers := []string{"State", "Year"}
	if hasQuarter {
		headers = append(headers, "Quarter")
	}
	headers = append(headers, "Vehicle Class", "Vehicle_Category")
	var countCols []string
	for _, col := range NumericColumns {
		if present[col] {
			countCols = append(countCols, col)
			headers = append(headers, col)
		}
	}
	metaCols := make([]string, 0, len(metaSet))
	for col := range metaSet {
		metaCols = append(metaCols, col)
	}
	sort.Strings(metaCols)
	headers = append(headers, metaCols...)

	out := tabular.Table{Headers: headers}
	for _, row := range rows {
		cells := []string{row.State, yearLabel(row.Year)}
		if hasQuarter {
			cells = append(cells, row.Quarter)
		}
		cells = append(cells, row.VehicleClass, row.Category)
		for _, col := range countCols {
			cells = append(cells, strconv.FormatInt(row.Counts[col], 10))
		}
		for _, col := range metaCols {
			cells = append(cells, row.Meta[col])
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}

// findColumn returns the index of the first matching column. Exact
// names are tried first, then a case-insensitive substring match on
// the last candidate, so "Registration Year" still resolves for
// "Year".
func findColumn(t tabular.Table, names ...string) int {
	for _, name := range names {
		if idx := t.ColumnIndex(name); idx >= 0 {
			return idx
		}
	}
	last := strings.ToLower(names[len(names)-1])
	for i, h := range t.Headers {
		if strings.Contains(strings.ToLower(h), last) {
			return i
		}
	}
	return -1
}

func cell(t tabular.Table, row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func allEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseCount coerces a count cell to a non-negative integer. Thousands
// separators and stray spaces are stripped; dashes, blanks, garbage
// and negatives all become zero. Registration counts cannot go below
// zero, so a negative cell is a rendering artifact, not data.
func parseCount(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "--" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0
		}
		v = int64(f)
	}
	if v < 0 {
		return 0
	}
	return v
}

// cleanYear pulls a four-digit year out of a label like "2023" or
// "Calendar Year (2023)".
func cleanYear(s string) int {
	if y := textutil.ExtractYear(s); y > 0 {
		return y
	}
	return unknownYear
}

// cleanQuarter reads an explicit quarter column, or falls back to a
// quarter token embedded in the period label ("2023 Q2"). Annual data
// has no quarter.
func cleanQuarter(quarterCell, periodCell string) string {
	for _, s := range []string{quarterCell, periodCell} {
		if m := quarterPattern.FindStringSubmatch(strings.ToUpper(s)); m != nil {
			return "Q" + m[1]
		}
	}
	return ""
}

// cleanPlaceName normalizes a state label: the portal suffixes state
// names with their RTO count, "Karnataka(29)".
func cleanPlaceName(s string) string {
	s = textutil.StripParenthetical(s)
	return textutil.TitleCase(textutil.CollapseWhitespace(s))
}

func cleanClassName(s string) string {
	return strings.ToUpper(textutil.CollapseWhitespace(s))
}

// cleanCategory prefers an explicit category column, then buckets the
// vehicle class, then gives up gracefully.
func cleanCategory(categoryCell, vehicleClass string) string {
	if c := textutil.CollapseWhitespace(categoryCell); c != "" {
		return c
	}
	upper := strings.ToUpper(vehicleClass)
	for _, bucket := range vehicleCategoryPatterns {
		for _, token := range bucket.tokens {
			if strings.Contains(upper, token) {
				return bucket.category
			}
		}
	}
	return "Other"
}

// dedupKey identifies a row by its state/year/quarter/class tuple.
// When none of those columns resolved, every row would share the same
// sentinel tuple, so the raw cells become the identity instead.
func dedupKey(row Row, raw []string) string {
	if row.State == unknownState && row.Year == unknownYear && row.VehicleClass == unknownVehicle {
		return strings.Join(raw, "\x1f")
	}
	return row.State + "|" + yearLabel(row.Year) + "|" + row.Quarter + "|" + row.VehicleClass
}

// metaColumns returns index -> header for every column cleaning does
// not consume, so the values can ride along on the cleaned rows.
func metaColumns(t tabular.Table, consumed ...int) map[int]string {
	used := make(map[int]bool, len(consumed)+len(NumericColumns))
	for _, idx := range consumed {
		if idx >= 0 {
			used[idx] = true
		}
	}
	for _, col := range NumericColumns {
		if idx := t.ColumnIndex(col); idx >= 0 {
			used[idx] = true
		}
	}
	out := map[int]string{}
	for i, h := range t.Headers {
		if !used[i] {
			out[i] = h
		}
	}
	return out
}

func yearLabel(year int) string {
	return strconv.Itoa(year)
}
