package analysis

import (
	"fmt"
	"math"
	"time"

	"hotel-market-backend/internal/model"
)

// Demand component weights on the 0-100 composite scale.
const (
	occupancyWeight = 30.0
	momentumWeight  = 30.0
	ratingWeight    = 20.0
	freshnessWeight = 20.0
)

// Trend-label thresholds over the unrounded components. Fixed policy
// constants, tunable only here.
const (
	risingMomentumFloor  = 15.0
	risingOccupancyFloor = 15.0
	fallingMomentumCeil  = 5.0
	fallingOccupancyCeil = 15.0
)

// Disclosure thresholds: a factor string is emitted only when its rate
// crosses these. Occupancy is always reported.
const (
	priceFactorDisclosure  = 20.0
	ratingFactorDisclosure = 30.0
)

// ScoreDemand computes the weighted 0-100 demand composite for a city's
// listing set. Freshness is measured against the run timestamp passed in,
// so one snapshot is internally consistent. An empty set scores zero.
func ScoreDemand(listings []model.Listing, now time.Time) model.DemandAnalysis {
	if len(listings) == 0 {
		return model.DemandAnalysis{
			Level:   model.DemandLow,
			Trend:   model.TrendStable,
			Factors: []string{"no data"},
		}
	}

	total := float64(len(listings))

	// Occupancy pressure (weight 0.30).
	occRate, _, _ := occupancyRate(listings)
	occComponent := math.Min(occupancyWeight, occRate/100*occupancyWeight)

	// Price momentum (weight 0.30): share of listings whose 30-day trend
	// exceeds +10%.
	increases := 0
	for _, l := range listings {
		if Trend(l.PriceHistory, DemandTrendWindowDays, now) > 10 {
			increases++
		}
	}
	increaseRate := float64(increases) / total * 100
	momComponent := math.Min(momentumWeight, increaseRate/50*momentumWeight)

	// Rating quality (weight 0.20): share of well-reviewed listings.
	highlyRated := 0
	for _, l := range listings {
		if l.Rating != nil && l.Rating.Score >= 8 && l.Rating.TotalReviews >= 50 {
			highlyRated++
		}
	}
	highRatingRate := float64(highlyRated) / total * 100
	ratingComponent := math.Min(ratingWeight, highRatingRate/50*ratingWeight)

	// Data freshness (weight 0.20): share refreshed in the last 24 hours.
	dayAgo := now.Add(-24 * time.Hour)
	fresh := 0
	for _, l := range listings {
		if !l.LastScrapedAt.Before(dayAgo) {
			fresh++
		}
	}
	freshRate := float64(fresh) / total * 100
	freshComponent := math.Min(freshnessWeight, freshRate/100*freshnessWeight)

	// The stored score is rounded; level uses the rounded value while the
	// trend label reads the unrounded components to avoid double rounding.
	score := int(math.Round(occComponent + momComponent + ratingComponent + freshComponent))

	var level model.DemandLevel
	switch {
	case score >= 75:
		level = model.DemandVeryHigh
	case score >= 50:
		level = model.DemandHigh
	case score >= 25:
		level = model.DemandMedium
	default:
		level = model.DemandLow
	}

	var trend model.DemandTrend
	switch {
	case momComponent > risingMomentumFloor && occComponent > risingOccupancyFloor:
		trend = model.TrendRising
	case momComponent < fallingMomentumCeil && occComponent < fallingOccupancyCeil:
		trend = model.TrendFalling
	default:
		trend = model.TrendStable
	}

	factors := []string{fmt.Sprintf("occupancy rate: %.1f%%", occRate)}
	if increaseRate > priceFactorDisclosure {
		factors = append(factors, fmt.Sprintf("%.0f%% of listings raised prices more than 10%% over %d days", increaseRate, DemandTrendWindowDays))
	}
	if highRatingRate > ratingFactorDisclosure {
		factors = append(factors, fmt.Sprintf("%.0f%% of listings are highly rated", highRatingRate))
	}

	return model.DemandAnalysis{
		Level:   level,
		Score:   score,
		Trend:   trend,
		Factors: factors,
		Metrics: model.DemandMetrics{
			OccupancyRate:     occRate,
			PriceIncreaseRate: increaseRate,
			HighRatingRate:    highRatingRate,
			FreshnessRate:     freshRate,
		},
	}
}
