package analysis

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"hotel-market-backend/internal/model"
)

const competitiveTopN = 5

// BuildSnapshot runs the full analysis chain over one city's listing set
// and assembles the immutable snapshot record. The caller is responsible
// for filtering invalid listings first and for persisting the result.
func BuildSnapshot(city, state string, listings []model.Listing, now time.Time) model.MarketSnapshot {
	agg := Aggregate(listings)
	demand := ScoreDemand(listings, now)

	alerts, recs := EvaluateRules(RuleInput{
		TotalListings: len(listings),
		SurgeListings: SurgeCount(listings, now),
		Occupancy:     agg.Occupancy,
		Price:         agg.Price,
		Demand:        demand,
		Now:           now,
	})

	return model.MarketSnapshot{
		ID:           uuid.NewString(),
		City:         city,
		State:        state,
		AnalysisDate: now,
		Demand:       demand,
		Price:        agg.Price,
		Occupancy:    agg.Occupancy,
		Rating:       agg.Rating,
		Competitive: model.CompetitiveAnalysis{
			TopPerformers: topPerformers(listings),
			PriceLeaders:  priceLeaders(listings),
		},
		Alerts:          alerts,
		Recommendations: recs,
	}
}

// topPerformers ranks the best-rated listings that have at least 20
// reviews. Ties break by listing ID ascending for determinism.
func topPerformers(listings []model.Listing) []model.TopPerformer {
	var rated []model.Listing
	for _, l := range listings {
		if l.Rating != nil && l.Rating.TotalReviews >= 20 {
			rated = append(rated, l)
		}
	}
	sort.Slice(rated, func(i, j int) bool {
		if rated[i].Rating.Score != rated[j].Rating.Score {
			return rated[i].Rating.Score > rated[j].Rating.Score
		}
		return rated[i].ID < rated[j].ID
	})

	top := make([]model.TopPerformer, 0, competitiveTopN)
	for _, l := range rated {
		if len(top) == competitiveTopN {
			break
		}
		top = append(top, model.TopPerformer{
			ListingID: l.ID,
			Name:      l.Name,
			Score:     l.Rating.Score,
		})
	}
	return top
}

// priceLeaders ranks listings by current price descending, ties by ID.
func priceLeaders(listings []model.Listing) []model.PriceLeader {
	sorted := make([]model.Listing, len(listings))
	copy(sorted, listings)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].CurrentPrice.Equal(sorted[j].CurrentPrice) {
			return sorted[i].CurrentPrice.GreaterThan(sorted[j].CurrentPrice)
		}
		return sorted[i].ID < sorted[j].ID
	})

	leaders := make([]model.PriceLeader, 0, competitiveTopN)
	for _, l := range sorted {
		if len(leaders) == competitiveTopN {
			break
		}
		leaders = append(leaders, model.PriceLeader{
			ListingID: l.ID,
			Name:      l.Name,
			Price:     l.CurrentPrice,
		})
	}
	return leaders
}

// TrendSummary is the per-listing trend rollup served by the trends route.
type TrendSummary struct {
	City          string         `json:"city"`
	WindowDays    int            `json:"windowDays"`
	OverallTrend  float64        `json:"overallTrend"`
	Listings      []ListingTrend `json:"listings"`
	IncreasingCnt int            `json:"increasing"`
	StableCnt     int            `json:"stable"`
	DecreasingCnt int            `json:"decreasing"`
}

// ListingTrend is one listing's trend inside a TrendSummary.
type ListingTrend struct {
	ListingID    string            `json:"listingId"`
	Name         string            `json:"name"`
	Type         model.ListingType `json:"type"`
	CurrentPrice string            `json:"currentPrice"`
	TrendPct     float64           `json:"trendPct"`
}

// SummarizeTrends computes each listing's trend over the given window and
// buckets them into increasing (> +5%), stable ([-5%, +5%]) and decreasing
// (< -5%).
func SummarizeTrends(city string, listings []model.Listing, windowDays int, now time.Time) TrendSummary {
	summary := TrendSummary{City: city, WindowDays: windowDays}
	var sum float64
	for _, l := range listings {
		pct := Trend(l.PriceHistory, windowDays, now)
		sum += pct
		switch {
		case pct > 5:
			summary.IncreasingCnt++
		case pct < -5:
			summary.DecreasingCnt++
		default:
			summary.StableCnt++
		}
		summary.Listings = append(summary.Listings, ListingTrend{
			ListingID:    l.ID,
			Name:         l.Name,
			Type:         l.Type,
			CurrentPrice: l.CurrentPrice.String(),
			TrendPct:     pct,
		})
	}
	if len(listings) > 0 {
		summary.OverallTrend = sum / float64(len(listings))
	}
	return summary
}
