package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func annualRow(state string, year int, class, category string, total int64) Row {
	return Row{
		State:        state,
		Year:         year,
		VehicleClass: class,
		Category:     category,
		Counts:       map[string]int64{"TOTAL": total},
	}
}

func TestGrowthRate(t *testing.T) {
	require.Equal(t, 50.0, growthRate(150, 100))
	require.Equal(t, -25.0, growthRate(75, 100))
	require.Equal(t, 0.0, growthRate(150, 0), "zero base must not explode")
	require.Equal(t, 0.0, growthRate(100, 100))
}

func TestYoYTotalSeries(t *testing.T) {
	rows := []Row{
		annualRow("Karnataka", 2021, "MOTOR CYCLE", "2W", 100),
		annualRow("Karnataka", 2022, "MOTOR CYCLE", "2W", 150),
		annualRow("Karnataka", 2023, "MOTOR CYCLE", "2W", 180),
	}
	report := Growth(context.Background(), rows)

	require.Len(t, report.YoYTotal, 2, "3 years give 2 growth points")
	require.Equal(t, "2021->2022", report.YoYTotal[0].Pair)
	require.Equal(t, 50.0, report.YoYTotal[0].Rate)
	require.Equal(t, int64(50), report.YoYTotal[0].Absolute)
	require.Equal(t, 20.0, report.YoYTotal[1].Rate)
}

func TestYoYZeroBase(t *testing.T) {
	rows := []Row{
		annualRow("Delhi", 2022, "E-RICKSHAW", "3W", 0),
		annualRow("Delhi", 2023, "E-RICKSHAW", "3W", 500),
	}
	report := Growth(context.Background(), rows)

	require.Len(t, report.YoYTotal, 1)
	require.Equal(t, 0.0, report.YoYTotal[0].Rate)
	require.Equal(t, int64(500), report.YoYTotal[0].Absolute, "new-from-nothing reported as absolute change")
}

func TestCAGR(t *testing.T) {
	rows := []Row{
		annualRow("Karnataka", 2021, "MOTOR CYCLE", "2W", 100),
		annualRow("Karnataka", 2022, "MOTOR CYCLE", "2W", 110),
		annualRow("Karnataka", 2023, "MOTOR CYCLE", "2W", 121),
	}
	got, periods := cagr(rows)
	require.Equal(t, 2, periods)
	require.InDelta(t, 10.0, got, 0.01)
}

func TestCAGRGuards(t *testing.T) {
	got, periods := cagr([]Row{annualRow("Delhi", 2023, "BUS", "4W+", 100)})
	require.Equal(t, 0.0, got)
	require.Equal(t, 0, periods)

	got, _ = cagr([]Row{
		annualRow("Delhi", 2022, "BUS", "4W+", 0),
		annualRow("Delhi", 2023, "BUS", "4W+", 100),
	})
	require.Equal(t, 0.0, got, "non-positive starting total")
}

func TestVolatilityBuckets(t *testing.T) {
	require.Equal(t, "Very Stable", stabilityBucket(3))
	require.Equal(t, "Stable", stabilityBucket(7))
	require.Equal(t, "Moderate", stabilityBucket(15))
	require.Equal(t, "Volatile", stabilityBucket(25))
	require.Equal(t, "Highly Volatile", stabilityBucket(45))
}

func TestVolatilityExcludesZeroBasePoints(t *testing.T) {
	report := volatility([]GrowthPoint{
		{Rate: 0, Previous: 0, Current: 100},
		{Rate: 10, Previous: 100, Current: 110},
		{Rate: 12, Previous: 110, Current: 123},
	})
	require.True(t, report.Valid)
	require.Equal(t, []float64{10, 12}, report.Rates)
	require.Equal(t, "Very Stable", report.Stability)

	insufficient := volatility([]GrowthPoint{{Rate: 10, Previous: 100}})
	require.False(t, insufficient.Valid)
	require.Equal(t, "Insufficient Data", insufficient.Stability)
}

func TestQoQRequiresQuarters(t *testing.T) {
	annual := []Row{
		annualRow("Delhi", 2022, "BUS", "4W+", 100),
		annualRow("Delhi", 2023, "BUS", "4W+", 120),
	}
	report := Growth(context.Background(), annual)
	require.Nil(t, report.QoQTotal)

	quarterly := []Row{
		{State: "Delhi", Year: 2023, Quarter: "Q1", VehicleClass: "BUS", Category: "4W+", Counts: map[string]int64{"TOTAL": 100}},
		{State: "Delhi", Year: 2023, Quarter: "Q2", VehicleClass: "BUS", Category: "4W+", Counts: map[string]int64{"TOTAL": 130}},
	}
	report = Growth(context.Background(), quarterly)
	require.Len(t, report.QoQTotal, 1)
	require.Equal(t, "2023-Q1->2023-Q2", report.QoQTotal[0].Pair)
	require.Equal(t, 30.0, report.QoQTotal[0].Rate)
	require.Len(t, report.QoQByCategory["4W+"], 1)
}

func TestPatternsInsufficientData(t *testing.T) {
	report := patterns([]Row{annualRow("Delhi", 2023, "BUS", "4W+", 100)}, nil)
	require.Equal(t, "Insufficient Data", report.TrendDirection)
	require.Equal(t, "Insufficient Data", report.Acceleration)
	require.Equal(t, "Insufficient Data", report.Cyclical)
}

func TestPatternsDetectsTrendAndCycle(t *testing.T) {
	var rows []Row
	totals := map[int]int64{2019: 100, 2020: 150, 2021: 90, 2022: 160, 2023: 200}
	for year, total := range totals {
		rows = append(rows, annualRow("Delhi", year, "BUS", "4W+", total))
	}
	report := patterns(rows, nil)
	require.Equal(t, "Upward", report.TrendDirection)
	require.Equal(t, 1, report.Peaks)
	require.Equal(t, 1, report.Troughs)
	require.Equal(t, "Cyclical", report.Cyclical)
}

func TestForecastProjection(t *testing.T) {
	rows := []Row{
		annualRow("Delhi", 2021, "BUS", "4W+", 100),
		annualRow("Delhi", 2022, "BUS", "4W+", 200),
		annualRow("Delhi", 2023, "BUS", "4W+", 300),
	}
	fc := forecast(rows, 2)
	require.True(t, fc.Valid)
	require.Equal(t, "High", fc.Confidence, "perfect line fits with r2 = 1")
	require.Equal(t, int64(400), fc.Values[2024])
	require.Equal(t, int64(500), fc.Values[2025])

	insufficient := forecast(rows[:2], 2)
	require.False(t, insufficient.Valid)
}

func TestManufacturerTrendsRanking(t *testing.T) {
	rows := []Row{
		annualRow("Delhi", 2022, "MOTOR CYCLE", "2W", 500),
		annualRow("Delhi", 2023, "MOTOR CYCLE", "2W", 550),
		annualRow("Delhi", 2022, "E-RICKSHAW", "3W", 100),
		annualRow("Delhi", 2023, "E-RICKSHAW", "3W", 160),
	}
	trends := manufacturerTrends(rows)

	require.Equal(t, "MOTOR CYCLE", trends.Top[0].Key)
	require.InDelta(t, 80.15, trends.Top[0].Share, 0.01)

	require.Equal(t, "E-RICKSHAW", trends.Growth[0].Key, "fastest grower ranks first")
	require.Equal(t, 60.0, trends.Growth[0].Rate)
	require.Equal(t, 10.0, trends.Growth[1].Rate)
}
