package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// Thresholds for narrative insight generation, in percent.
const (
	leaderCategoryRate = 10
	leaderStateRate    = 15
	opportunityRate    = 20
	declineRate        = -5
	steepDeclineRate   = -15
	stateShareWarn     = 40
	makerShareWarn     = 30
	dominantShare      = 10
	emergingShare      = 2
)

// HHI classification bounds, on the 0..10000 scale.
const (
	hhiHighlyConcentrated     = 2500
	hhiModeratelyConcentrated = 1500
)

// GenerateInsights turns a cleaned dataset and its growth report into
// the narrative layer: market overview, growth leaders, risk flags,
// opportunities, competitive landscape and penetration tiers.
func GenerateInsights(ctx context.Context, rows []Row, growth GrowthReport) Insights {
	ctx, span := tracer.Start(ctx, "analytics.GenerateInsights")
	defer span.End()

	insights := Insights{
		Overview:      overview(rows),
		GrowthLeaders: growthLeaders(growth),
		Opportunities: opportunities(growth),
		Landscape:     landscape(growth.Manufacturer.Top),
		Penetration:   penetration(rows),
	}
	insights.Risks = risks(rows, growth, insights.Landscape)

	slog.InfoContext(ctx, "insights generated",
		"leaders", len(insights.GrowthLeaders),
		"risks", len(insights.Risks),
		"opportunities", len(insights.Opportunities),
		"hhi", insights.Landscape.HHI)
	return insights
}

func overview(rows []Row) MarketOverview {
	out := MarketOverview{CategoryBreakdown: map[string]int64{}}
	states := map[string]bool{}
	for _, row := range rows {
		total := row.Total()
		out.TotalRegistrations += total
		out.CategoryBreakdown[row.Category] += total
		states[row.State] = true
		if row.Year != unknownYear {
			if out.PeriodStart == 0 || row.Year < out.PeriodStart {
				out.PeriodStart = row.Year
			}
			if row.Year > out.PeriodEnd {
				out.PeriodEnd = row.Year
			}
		}
	}
	out.StatesCovered = len(states)
	return out
}

// growthLeaders names the categories and states growing past their
// thresholds in the latest period.
func growthLeaders(growth GrowthReport) []string {
	var leaders []string
	for _, category := range sortedGroupKeys(growth.YoYByCategory) {
		series := growth.YoYByCategory[category]
		latest := series[len(series)-1]
		if latest.Rate > leaderCategoryRate {
			leaders = append(leaders,
				fmt.Sprintf("%s segment growing %.1f%% year over year", category, latest.Rate))
		}
	}
	for _, state := range sortedGroupKeys(growth.YoYByState) {
		series := growth.YoYByState[state]
		latest := series[len(series)-1]
		if latest.Rate > leaderStateRate {
			leaders = append(leaders,
				fmt.Sprintf("%s registrations up %.1f%% year over year", state, latest.Rate))
		}
	}
	return leaders
}

func risks(rows []Row, growth GrowthReport, land CompetitiveLandscape) []Risk {
	var out []Risk

	for _, category := range sortedGroupKeys(growth.YoYByCategory) {
		series := growth.YoYByCategory[category]
		latest := series[len(series)-1]
		if latest.Rate < declineRate {
			severity := "Medium"
			if latest.Rate < steepDeclineRate {
				severity = "High"
			}
			out = append(out, Risk{
				Type:     "Market Decline",
				Severity: severity,
				Description: fmt.Sprintf("%s segment declining %.1f%% year over year",
					category, latest.Rate),
			})
		}
	}

	// A single-state dataset is concentrated by construction, not by
	// market structure.
	if top := topStateShare(rows); top.Key != "" && top.Share > stateShareWarn && distinctStates(rows) > 1 {
		out = append(out, Risk{
			Type:     "Geographic Concentration",
			Severity: "Medium",
			Description: fmt.Sprintf("%s accounts for %.1f%% of all registrations",
				top.Key, top.Share),
		})
	}

	if len(land.Leaders) > 0 && land.Leaders[0].Share > makerShareWarn {
		out = append(out, Risk{
			Type:     "Market Concentration",
			Severity: "Medium",
			Description: fmt.Sprintf("%s holds a %.1f%% market share",
				land.Leaders[0].Key, land.Leaders[0].Share),
		})
	}
	return out
}

func opportunities(growth GrowthReport) []Opportunity {
	var out []Opportunity
	count := 0
	for _, point := range growth.Manufacturer.Growth {
		if point.Rate <= opportunityRate || count >= 3 {
			break
		}
		out = append(out, Opportunity{
			Type: "High Growth Segment",
			Description: fmt.Sprintf("%s showing exceptional %.1f%% growth",
				point.Key, point.Rate),
		})
		count++
	}

	best := ""
	bestRate := float64(leaderCategoryRate)
	for _, category := range sortedGroupKeys(growth.YoYByCategory) {
		series := growth.YoYByCategory[category]
		latest := series[len(series)-1]
		if latest.Rate > bestRate {
			best, bestRate = category, latest.Rate
		}
	}
	if best != "" {
		out = append(out, Opportunity{
			Type: "Expanding Category",
			Description: fmt.Sprintf("%s is the fastest expanding category at %.1f%%",
				best, bestRate),
		})
	}

	if len(growth.Manufacturer.Top) > 0 {
		leader := growth.Manufacturer.Top[0]
		out = append(out, Opportunity{
			Type: "Volume Leader",
			Description: fmt.Sprintf("%s leads the market with %d registrations",
				leader.Key, leader.Total),
		})
	}
	return out
}

// landscape ranks the top five classes and scores concentration with
// the Herfindahl-Hirschman index: the sum of squared market shares,
// 0..10000.
func landscape(top []VolumeShare) CompetitiveLandscape {
	out := CompetitiveLandscape{}
	var hhi float64
	for _, share := range top {
		hhi += (share.Share / 100) * (share.Share / 100) * 10000
	}
	out.HHI = round2(hhi)
	switch {
	case hhi > hhiHighlyConcentrated:
		out.Classification = "Highly Concentrated"
	case hhi > hhiModeratelyConcentrated:
		out.Classification = "Moderately Concentrated"
	default:
		out.Classification = "Competitive"
	}
	if len(top) > 5 {
		top = top[:5]
	}
	out.Leaders = append(out.Leaders, top...)
	return out
}

// penetration tiers each category by its share of total volume.
func penetration(rows []Row) []PenetrationTier {
	byCategory := map[string]int64{}
	var grand int64
	for _, row := range rows {
		total := row.Total()
		byCategory[row.Category] += total
		grand += total
	}
	if grand == 0 {
		return nil
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var out []PenetrationTier
	for _, category := range categories {
		share := round2(float64(byCategory[category]) / float64(grand) * 100)
		tier := "Niche"
		switch {
		case share > dominantShare:
			tier = "Dominant"
		case share > emergingShare:
			tier = "Emerging"
		}
		out = append(out, PenetrationTier{Category: category, Share: share, Tier: tier})
	}
	return out
}

func topStateShare(rows []Row) VolumeShare {
	byState := map[string]int64{}
	var grand int64
	for _, row := range rows {
		total := row.Total()
		byState[row.State] += total
		grand += total
	}
	var top VolumeShare
	for state, total := range byState {
		if total > top.Total || (total == top.Total && state < top.Key) {
			top = VolumeShare{Key: state, Total: total}
		}
	}
	if grand > 0 {
		top.Share = round2(float64(top.Total) / float64(grand) * 100)
	}
	return top
}

func distinctStates(rows []Row) int {
	states := map[string]bool{}
	for _, row := range rows {
		states[row.State] = true
	}
	return len(states)
}

func sortedGroupKeys(m map[string][]GrowthPoint) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
