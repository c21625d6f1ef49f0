package analytics

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"vahanpulse-backend/lib/tabular"

	"github.com/jedib0t/go-pretty/v6/table"
)

// WriteCleanedCSV exports the cleaned rows to a CSV file.
func WriteCleanedCSV(rows []Row, path string) error {
	return ToTable(rows).WriteCSV(path)
}

// WriteGrowthCSV flattens every growth series in the report into one
// long-form CSV: one line per measurement, tagged by metric type.
func WriteGrowthCSV(report GrowthReport, path string) error {
	out := tabular.Table{
		Headers: []string{"Metric_Type", "Key", "Period", "Current", "Previous", "Growth_Rate", "Absolute_Change"},
	}
	appendSeries := func(metric string, series []GrowthPoint) {
		for _, p := range series {
			out.Rows = append(out.Rows, []string{
				metric, p.Key, p.Period,
				strconv.FormatInt(p.Current, 10),
				strconv.FormatInt(p.Previous, 10),
				strconv.FormatFloat(p.Rate, 'f', 2, 64),
				strconv.FormatInt(p.Absolute, 10),
			})
		}
	}

	appendSeries("yoy_total", report.YoYTotal)
	for _, key := range sortedGroupKeys(report.YoYByCategory) {
		appendSeries("yoy_category", report.YoYByCategory[key])
	}
	for _, key := range sortedGroupKeys(report.YoYByState) {
		appendSeries("yoy_state", report.YoYByState[key])
	}
	appendSeries("qoq_total", report.QoQTotal)
	for _, key := range sortedGroupKeys(report.QoQByCategory) {
		appendSeries("qoq_category", report.QoQByCategory[key])
	}
	appendSeries("vehicle_class_growth", report.Manufacturer.Growth)
	return out.WriteCSV(path)
}

// RenderReport prints a human-readable summary of the pipeline output.
func RenderReport(w io.Writer, result ProcessingResult) {
	ov := result.Insights.Overview
	fmt.Fprintf(w, "Registrations: %d  |  Period: %d-%d  |  States: %d  |  Records: %d\n\n",
		ov.TotalRegistrations, ov.PeriodStart, ov.PeriodEnd, ov.StatesCovered, len(result.Rows))

	if len(result.Growth.YoYTotal) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetTitle("Year over Year Growth")
		t.AppendHeader(table.Row{"Period", "Registrations", "Growth", "Change"})
		for _, p := range result.Growth.YoYTotal {
			t.AppendRow(table.Row{p.Pair, p.Current, fmt.Sprintf("%.2f%%", p.Rate), p.Absolute})
		}
		t.AppendFooter(table.Row{"CAGR", "", fmt.Sprintf("%.2f%%", result.Growth.CAGR), ""})
		t.SetStyle(table.StyleRounded)
		t.Render()
		fmt.Fprintln(w)
	}

	if vol := result.Growth.Volatility; vol.Valid {
		fmt.Fprintf(w, "Volatility: %s (stddev %.2f, avg growth %.2f%%)\n", vol.Stability, vol.StdDev, vol.Average)
	}
	fmt.Fprintf(w, "Trend: %s, %s\n\n", result.Growth.Pattern.TrendDirection, result.Growth.Pattern.Acceleration)

	if len(result.Insights.Landscape.Leaders) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetTitle(fmt.Sprintf("Competitive Landscape (HHI %.0f, %s)",
			result.Insights.Landscape.HHI, result.Insights.Landscape.Classification))
		t.AppendHeader(table.Row{"#", "Vehicle Class", "Registrations", "Share"})
		for i, leader := range result.Insights.Landscape.Leaders {
			t.AppendRow(table.Row{i + 1, leader.Key, leader.Total, fmt.Sprintf("%.1f%%", leader.Share)})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		fmt.Fprintln(w)
	}

	for _, leader := range result.Insights.GrowthLeaders {
		fmt.Fprintf(w, "  + %s\n", leader)
	}
	for _, opp := range result.Insights.Opportunities {
		fmt.Fprintf(w, "  * [%s] %s\n", opp.Type, opp.Description)
	}
	for _, risk := range result.Insights.Risks {
		fmt.Fprintf(w, "  ! [%s/%s] %s\n", risk.Type, risk.Severity, risk.Description)
	}

	if fc := result.Growth.Forecast; fc.Valid {
		fmt.Fprintf(w, "\nForecast (%s confidence, r2 %.2f):\n", fc.Confidence, fc.RSquared)
		years := make([]int, 0, len(fc.Values))
		for y := range fc.Values {
			years = append(years, y)
		}
		sort.Ints(years)
		for _, y := range years {
			fmt.Fprintf(w, "  %d: %d\n", y, fc.Values[y])
		}
	}
}
