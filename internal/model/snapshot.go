package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DemandLevel is the qualitative classification of a city's demand score.
type DemandLevel string

const (
	DemandLow      DemandLevel = "low"
	DemandMedium   DemandLevel = "medium"
	DemandHigh     DemandLevel = "high"
	DemandVeryHigh DemandLevel = "very high"
)

// DemandTrend labels the direction the demand signal is moving.
type DemandTrend string

const (
	TrendRising  DemandTrend = "rising"
	TrendStable  DemandTrend = "stable"
	TrendFalling DemandTrend = "falling"
)

// DemandMetrics exposes the raw rates behind the demand components.
type DemandMetrics struct {
	OccupancyRate     float64 `json:"occupancyRate"`
	PriceIncreaseRate float64 `json:"priceIncreaseRate"`
	HighRatingRate    float64 `json:"highRatingRate"`
	FreshnessRate     float64 `json:"freshnessRate"`
}

// DemandAnalysis is the aggregate demand signal for one city.
type DemandAnalysis struct {
	Level   DemandLevel   `json:"level"`
	Score   int           `json:"score"`
	Trend   DemandTrend   `json:"trend"`
	Factors []string      `json:"factors"`
	Metrics DemandMetrics `json:"metrics"`
}

// TypePriceStats is the per-listing-type slice of the price distribution.
type TypePriceStats struct {
	Type         ListingType     `json:"type"`
	AveragePrice decimal.Decimal `json:"averagePrice"`
	Count        int             `json:"count"`
}

// PriceAnalysis describes the price distribution across a city's listings.
type PriceAnalysis struct {
	Average      decimal.Decimal  `json:"average"`
	Median       decimal.Decimal  `json:"median"`
	Min          decimal.Decimal  `json:"min"`
	Max          decimal.Decimal  `json:"max"`
	VariationPct float64          `json:"variationPct"`
	ByType       []TypePriceStats `json:"byType"`
}

// TypeOccupancy is the per-type occupancy slice.
type TypeOccupancy struct {
	Type          ListingType `json:"type"`
	OccupancyRate float64     `json:"occupancyRate"`
	Count         int         `json:"count"`
}

// OccupancyAnalysis describes how occupied a city's listings are.
type OccupancyAnalysis struct {
	Average           float64         `json:"average"`
	TotalListings     int             `json:"totalListings"`
	AvailableListings int             `json:"availableListings"`
	OccupancyRate     float64         `json:"occupancyRate"`
	ByType            []TypeOccupancy `json:"byType"`
}

// ScoreBand is one fixed band of the rating distribution.
type ScoreBand struct {
	Range      string  `json:"range"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// RatingAnalysis describes the rating distribution over rated listings.
type RatingAnalysis struct {
	Average      float64     `json:"average"`
	TotalReviews int         `json:"totalReviews"`
	Distribution []ScoreBand `json:"distribution"`
}

// TopPerformer is a best-rated listing in the competitive ranking.
type TopPerformer struct {
	ListingID string  `json:"listingId"`
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
}

// PriceLeader is a highest-priced listing in the competitive ranking.
type PriceLeader struct {
	ListingID string          `json:"listingId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
}

// CompetitiveAnalysis ranks the city's standout listings.
type CompetitiveAnalysis struct {
	TopPerformers []TopPerformer `json:"topPerformers"`
	PriceLeaders  []PriceLeader  `json:"priceLeaders"`
}

// AlertType identifies a threshold rule that fired.
type AlertType string

const (
	AlertPriceSurge      AlertType = "price_surge"
	AlertLowAvailability AlertType = "low_availability"
)

// Severity grades alerts and recommendation priorities.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Alert is one fired threshold rule.
type Alert struct {
	Type             AlertType `json:"type"`
	Severity         Severity  `json:"severity"`
	Message          string    `json:"message"`
	AffectedListings int       `json:"affectedListings"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Recommendation is one actionable suggestion derived from the analysis.
type Recommendation struct {
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Severity `json:"priority"`
}

// MarketSnapshot is one immutable, dated market-analysis result for a city.
// It is written once per analysis run and never updated; the sub-structures
// are stored as JSON documents.
type MarketSnapshot struct {
	ID              string              `gorm:"primaryKey;size:36" json:"id"`
	City            string              `gorm:"size:128;index:idx_snapshots_city_date,priority:1;not null" json:"city"`
	State           string              `gorm:"size:64" json:"state"`
	AnalysisDate    time.Time           `gorm:"index:idx_snapshots_city_date,priority:2;not null" json:"analysisDate"`
	Demand          DemandAnalysis      `gorm:"serializer:json" json:"demand"`
	Price           PriceAnalysis       `gorm:"serializer:json" json:"price"`
	Occupancy       OccupancyAnalysis   `gorm:"serializer:json" json:"occupancy"`
	Rating          RatingAnalysis      `gorm:"serializer:json" json:"rating"`
	Competitive     CompetitiveAnalysis `gorm:"serializer:json" json:"competitive"`
	Alerts          []Alert             `gorm:"serializer:json" json:"alerts"`
	Recommendations []Recommendation    `gorm:"serializer:json" json:"recommendations"`
	CreatedAt       time.Time           `json:"createdAt"`
}
