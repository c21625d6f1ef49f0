// Package analytics turns raw scraped registration tables into cleaned
// records, growth metrics and market insights.
package analytics

import (
	"time"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("vahanpulse.services.analytics")

// NumericColumns are the registration count columns a report can
// carry, in canonical order. Cleaning coerces every one that is
// present; absent columns stay absent.
var NumericColumns = []string{"2WIC", "2WN", "2WT", "3WN", "3WT", "LMV", "MMV", "HMV", "TOTAL"}

// Row is one cleaned registration record.
type Row struct {
	State        string
	Year         int
	Quarter      string // "Q1".."Q4", or "" when the source is annual
	VehicleClass string
	Category     string
	Counts       map[string]int64
	// Meta carries source columns cleaning does not interpret
	// (Scraped_Date, Filter_Vehicle_Type, ...) so they survive a
	// clean/export round trip. Nil when the source had none.
	Meta map[string]string
}

// Total returns the row's TOTAL count, falling back to the sum of the
// per-category counts when the source table had no TOTAL column.
func (r Row) Total() int64 {
	if v, ok := r.Counts["TOTAL"]; ok {
		return v
	}
	var sum int64
	for _, v := range r.Counts {
		sum += v
	}
	return sum
}

// Period is the row's time bucket, "2023" or "2023-Q1".
func (r Row) Period() string {
	if r.Quarter == "" {
		return yearLabel(r.Year)
	}
	return yearLabel(r.Year) + "-" + r.Quarter
}

// GrowthPoint is one period-over-period measurement for one group.
type GrowthPoint struct {
	Key      string  // group key; "" for whole-market series
	Period   string  // the later period of the pair
	Pair     string  // "2022->2023"
	Current  int64
	Previous int64
	Rate     float64 // percent, 0 when Previous is 0
	Absolute int64   // Current - Previous
}

// VolumeShare ranks one group by total registrations.
type VolumeShare struct {
	Key   string
	Total int64
	Share float64 // percent of the grand total
}

// ManufacturerTrends summarizes the vehicle-class (maker proxy)
// dimension of the dataset.
type ManufacturerTrends struct {
	Top    []VolumeShare // descending by volume
	Growth []GrowthPoint // latest period pair, descending by rate
}

// VolatilityReport measures how jumpy the whole-market growth series
// is. Valid is false when fewer than two usable rates exist.
type VolatilityReport struct {
	Valid     bool
	Rates     []float64
	Average   float64
	StdDev    float64
	Stability string
}

// PatternReport captures trajectory shape over the full series.
type PatternReport struct {
	TrendDirection string // "Upward", "Downward", "Flat" or "Insufficient Data"
	Acceleration   string // "Accelerating", "Decelerating", "Stable" or "Insufficient Data"
	Peaks          int
	Troughs        int
	Cyclical       string // "Cyclical", "Monotonic" or "Insufficient Data"
}

// Forecast is a least-squares projection of whole-market totals.
type Forecast struct {
	Values     map[int]int64 // projected total per future year
	Slope      float64
	RSquared   float64
	Confidence string // "High", "Medium" or "Low"
	Valid      bool
	Reason     string // set when Valid is false
}

// GrowthReport is the full growth analysis over a cleaned dataset.
type GrowthReport struct {
	YoYTotal      []GrowthPoint
	YoYByCategory map[string][]GrowthPoint
	YoYByState    map[string][]GrowthPoint
	QoQTotal      []GrowthPoint
	QoQByCategory map[string][]GrowthPoint
	CAGR          float64
	CAGRPeriods   int
	Manufacturer  ManufacturerTrends
	Volatility    VolatilityReport
	Pattern       PatternReport
	Forecast      Forecast
}

// Risk flags a negative signal found in the data.
type Risk struct {
	Type        string
	Severity    string // "High" or "Medium"
	Description string
}

// Opportunity flags a positive signal found in the data.
type Opportunity struct {
	Type        string
	Description string
}

// MarketOverview describes the dataset's coverage.
type MarketOverview struct {
	TotalRegistrations int64
	PeriodStart        int
	PeriodEnd          int
	StatesCovered      int
	CategoryBreakdown  map[string]int64
}

// CompetitiveLandscape ranks the leading vehicle classes and scores
// market concentration with a Herfindahl-Hirschman index.
type CompetitiveLandscape struct {
	Leaders        []VolumeShare
	HHI            float64
	Classification string // "Highly Concentrated", "Moderately Concentrated" or "Competitive"
}

// PenetrationTier buckets categories by market share.
type PenetrationTier struct {
	Category string
	Share    float64
	Tier     string // "Dominant", "Emerging" or "Niche"
}

// Insights is the narrative layer produced from a GrowthReport.
type Insights struct {
	Overview      MarketOverview
	GrowthLeaders []string
	Risks         []Risk
	Opportunities []Opportunity
	Landscape     CompetitiveLandscape
	Penetration   []PenetrationTier
}

// ProcessingResult bundles one full pipeline run.
type ProcessingResult struct {
	Rows             []Row
	Growth           GrowthReport
	Insights         Insights
	RecordsProcessed int
	Elapsed          time.Duration
}
