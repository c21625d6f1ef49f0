package analytics

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"go.opentelemetry.io/otel/attribute"
)

const forecastHorizon = 3

// Growth computes the full growth analysis over a cleaned dataset:
// year-over-year series (total, per category, per state), quarterly
// series when quarter granularity exists, CAGR, vehicle-class trends,
// volatility, trajectory patterns and a simple forecast.
func Growth(ctx context.Context, rows []Row) GrowthReport {
	ctx, span := tracer.Start(ctx, "analytics.Growth")
	defer span.End()
	span.SetAttributes(attribute.Int("rows", len(rows)))

	report := GrowthReport{
		YoYTotal:      yoySeries(rows, func(Row) string { return "" })[""],
		YoYByCategory: yoySeries(rows, func(r Row) string { return r.Category }),
		YoYByState:    yoySeries(rows, func(r Row) string { return r.State }),
		QoQTotal:      qoqSeries(rows, func(Row) string { return "" })[""],
		QoQByCategory: qoqSeries(rows, func(r Row) string { return r.Category }),
		Manufacturer:  manufacturerTrends(rows),
	}
	report.CAGR, report.CAGRPeriods = cagr(rows)
	report.Volatility = volatility(report.YoYTotal)
	report.Pattern = patterns(rows, report.YoYTotal)
	report.Forecast = forecast(rows, forecastHorizon)

	slog.InfoContext(ctx, "growth analysis complete",
		"yoy_points", len(report.YoYTotal),
		"categories", len(report.YoYByCategory),
		"states", len(report.YoYByState),
		"cagr", report.CAGR)
	return report
}

// growthRate is the period-over-period percentage change. A zero base
// yields 0 rather than infinity; new-from-nothing growth is reported
// through the Absolute field instead.
func growthRate(current, previous int64) float64 {
	if previous == 0 {
		return 0
	}
	return round2(float64(current-previous) / float64(previous) * 100)
}

// yoySeries aggregates annual totals per group key and differentiates
// adjacent years. n years produce n-1 points per group.
func yoySeries(rows []Row, key func(Row) string) map[string][]GrowthPoint {
	totals := map[string]map[int]int64{}
	for _, row := range rows {
		if row.Year == unknownYear {
			continue
		}
		k := key(row)
		if totals[k] == nil {
			totals[k] = map[int]int64{}
		}
		totals[k][row.Year] += row.Total()
	}

	out := make(map[string][]GrowthPoint, len(totals))
	for k, byYear := range totals {
		years := sortedKeys(byYear)
		var series []GrowthPoint
		for i := 1; i < len(years); i++ {
			prev, cur := years[i-1], years[i]
			series = append(series, GrowthPoint{
				Key:      k,
				Period:   yearLabel(cur),
				Pair:     yearLabel(prev) + "->" + yearLabel(cur),
				Current:  byYear[cur],
				Previous: byYear[prev],
				Rate:     growthRate(byYear[cur], byYear[prev]),
				Absolute: byYear[cur] - byYear[prev],
			})
		}
		if series != nil {
			out[k] = series
		}
	}
	return out
}

// qoqSeries differentiates adjacent quarters per group key. Datasets
// without quarter granularity yield nothing.
func qoqSeries(rows []Row, key func(Row) string) map[string][]GrowthPoint {
	totals := map[string]map[string]int64{}
	for _, row := range rows {
		if row.Quarter == "" || row.Year == unknownYear {
			continue
		}
		k := key(row)
		if totals[k] == nil {
			totals[k] = map[string]int64{}
		}
		totals[k][row.Period()] += row.Total()
	}

	out := make(map[string][]GrowthPoint, len(totals))
	for k, byPeriod := range totals {
		if len(byPeriod) < 2 {
			continue
		}
		periods := make([]string, 0, len(byPeriod))
		for p := range byPeriod {
			periods = append(periods, p)
		}
		// "2023-Q1" labels sort correctly as strings.
		sort.Strings(periods)

		var series []GrowthPoint
		for i := 1; i < len(periods); i++ {
			prev, cur := periods[i-1], periods[i]
			series = append(series, GrowthPoint{
				Key:      k,
				Period:   cur,
				Pair:     prev + "->" + cur,
				Current:  byPeriod[cur],
				Previous: byPeriod[prev],
				Rate:     growthRate(byPeriod[cur], byPeriod[prev]),
				Absolute: byPeriod[cur] - byPeriod[prev],
			})
		}
		out[k] = series
	}
	return out
}

// cagr computes the compound annual growth rate of whole-market totals
// from the first year to the last. Returns 0 when fewer than two years
// exist or the starting total is not positive.
func cagr(rows []Row) (float64, int) {
	byYear := totalsByYear(rows)
	years := sortedKeys(byYear)
	if len(years) < 2 {
		return 0, 0
	}
	start := float64(byYear[years[0]])
	end := float64(byYear[years[len(years)-1]])
	periods := years[len(years)-1] - years[0]
	if start <= 0 || periods <= 0 {
		return 0, periods
	}
	rate := (math.Pow(end/start, 1/float64(periods)) - 1) * 100
	return round2(rate), periods
}

// volatility measures the spread of the whole-market growth series.
// Points with a zero base are excluded; their 0 rate is a reporting
// convention, not an observation.
func volatility(series []GrowthPoint) VolatilityReport {
	var rates []float64
	for _, p := range series {
		if p.Previous > 0 {
			rates = append(rates, p.Rate)
		}
	}
	if len(rates) < 2 {
		return VolatilityReport{Valid: false, Stability: "Insufficient Data"}
	}

	avg := mean(rates)
	sd := stdDev(rates, avg)
	return VolatilityReport{
		Valid:     true,
		Rates:     rates,
		Average:   round2(avg),
		StdDev:    round2(sd),
		Stability: stabilityBucket(sd),
	}
}

func stabilityBucket(sd float64) string {
	switch {
	case sd < 5:
		return "Very Stable"
	case sd < 10:
		return "Stable"
	case sd < 20:
		return "Moderate"
	case sd < 30:
		return "Volatile"
	default:
		return "Highly Volatile"
	}
}

// patterns classifies the trajectory of whole-market totals: trend
// direction over the last three periods, growth acceleration, and
// peaks/troughs over the full series.
func patterns(rows []Row, yoy []GrowthPoint) PatternReport {
	byYear := totalsByYear(rows)
	years := sortedKeys(byYear)

	report := PatternReport{
		TrendDirection: "Insufficient Data",
		Acceleration:   "Insufficient Data",
		Cyclical:       "Insufficient Data",
	}

	if len(years) >= 3 {
		recent := years[len(years)-3:]
		values := make([]float64, len(recent))
		for i, y := range recent {
			values[i] = float64(byYear[y])
		}
		slope, _ := linearFit(values)
		// Flat means the fitted change per period is under half a
		// percent of the series mean.
		threshold := mean(values) * 0.005
		switch {
		case slope > threshold:
			report.TrendDirection = "Upward"
		case slope < -threshold:
			report.TrendDirection = "Downward"
		default:
			report.TrendDirection = "Flat"
		}
	}

	if len(yoy) >= 3 {
		recent := (yoy[len(yoy)-1].Rate + yoy[len(yoy)-2].Rate) / 2
		var earlier []float64
		for _, p := range yoy[:len(yoy)-2] {
			earlier = append(earlier, p.Rate)
		}
		diff := recent - mean(earlier)
		switch {
		case diff > 2:
			report.Acceleration = "Accelerating"
		case diff < -2:
			report.Acceleration = "Decelerating"
		default:
			report.Acceleration = "Stable"
		}
	}

	if len(years) >= 4 {
		for i := 1; i < len(years)-1; i++ {
			prev := byYear[years[i-1]]
			cur := byYear[years[i]]
			next := byYear[years[i+1]]
			if cur > prev && cur > next {
				report.Peaks++
			}
			if cur < prev && cur < next {
				report.Troughs++
			}
		}
		if report.Peaks >= 1 && report.Troughs >= 1 {
			report.Cyclical = "Cyclical"
		} else {
			report.Cyclical = "Monotonic"
		}
	}
	return report
}

// forecast projects whole-market totals with an ordinary least-squares
// line over the annual series. Projections are clamped at zero.
func forecast(rows []Row, horizon int) Forecast {
	byYear := totalsByYear(rows)
	years := sortedKeys(byYear)
	if len(years) < 3 {
		return Forecast{Valid: false, Reason: "need at least 3 years of data"}
	}

	values := make([]float64, len(years))
	for i, y := range years {
		values[i] = float64(byYear[y])
	}
	slope, intercept := linearFit(values)
	r2 := rSquared(values, slope, intercept)

	out := Forecast{
		Values:   make(map[int]int64, horizon),
		Slope:    round2(slope),
		RSquared: round2(r2),
		Valid:    true,
	}
	switch {
	case r2 > 0.8:
		out.Confidence = "High"
	case r2 > 0.5:
		out.Confidence = "Medium"
	default:
		out.Confidence = "Low"
	}

	lastYear := years[len(years)-1]
	for i := 1; i <= horizon; i++ {
		x := float64(len(values) - 1 + i)
		projected := slope*x + intercept
		if projected < 0 {
			projected = 0
		}
		out.Values[lastYear+i] = int64(math.Round(projected))
	}
	return out
}

// manufacturerTrends treats the vehicle class as the closest available
// proxy for manufacturer segmentation: top classes by volume with
// market share, and latest-year growth ranked fastest first.
func manufacturerTrends(rows []Row) ManufacturerTrends {
	byClass := map[string]int64{}
	var grand int64
	for _, row := range rows {
		total := row.Total()
		byClass[row.VehicleClass] += total
		grand += total
	}

	top := make([]VolumeShare, 0, len(byClass))
	for class, total := range byClass {
		share := 0.0
		if grand > 0 {
			share = round2(float64(total) / float64(grand) * 100)
		}
		top = append(top, VolumeShare{Key: class, Total: total, Share: share})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Total != top[j].Total {
			return top[i].Total > top[j].Total
		}
		return top[i].Key < top[j].Key
	})
	if len(top) > 10 {
		top = top[:10]
	}

	var growth []GrowthPoint
	for _, series := range yoySeries(rows, func(r Row) string { return r.VehicleClass }) {
		growth = append(growth, series[len(series)-1])
	}
	sort.Slice(growth, func(i, j int) bool {
		if growth[i].Rate != growth[j].Rate {
			return growth[i].Rate > growth[j].Rate
		}
		return growth[i].Key < growth[j].Key
	})

	return ManufacturerTrends{Top: top, Growth: growth}
}

func totalsByYear(rows []Row) map[int]int64 {
	out := map[int]int64{}
	for _, row := range rows {
		if row.Year == unknownYear {
			continue
		}
		out[row.Year] += row.Total()
	}
	return out
}

func sortedKeys(m map[int]int64) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// linearFit fits y = slope*x + intercept over values indexed 0..n-1.
func linearFit(values []float64) (slope, intercept float64) {
	n := float64(len(values))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, mean(values)
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

func rSquared(values []float64, slope, intercept float64) float64 {
	avg := mean(values)
	var ssRes, ssTot float64
	for i, y := range values {
		fit := slope*float64(i) + intercept
		ssRes += (y - fit) * (y - fit)
		ssTot += (y - avg) * (y - avg)
	}
	if ssTot == 0 {
		return 1
	}
	return 1 - ssRes/ssTot
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64, avg float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += (v - avg) * (v - avg)
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
