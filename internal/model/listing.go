package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RetentionDays bounds every listing's price history. Samples older than
// this window are pruned on each append, never by a separate sweep.
const RetentionDays = 365

// ListingType classifies a trackable rentable unit.
type ListingType string

const (
	TypeHotel     ListingType = "hotel"
	TypePousada   ListingType = "pousada"
	TypeResort    ListingType = "resort"
	TypeHostel    ListingType = "hostel"
	TypeChalet    ListingType = "chalet"
	TypeApartment ListingType = "apartment"
	TypeOther     ListingType = "other"
)

// Rating holds review data for a listing. A nil Rating on Listing means the
// source platform reported no reviews at all.
type Rating struct {
	Score        float64 `gorm:"column:rating_score" json:"score"`
	TotalReviews int     `gorm:"column:rating_total_reviews" json:"totalReviews"`
}

// Availability is the last observed availability state of a listing.
// A zero LastChecked means availability was never reported; such listings
// are excluded from occupancy-rate denominators.
type Availability struct {
	IsAvailable   bool      `gorm:"column:is_available" json:"isAvailable"`
	LastChecked   time.Time `gorm:"column:last_checked" json:"lastChecked"`
	OccupancyRate *float64  `gorm:"column:listing_occupancy_rate" json:"occupancyRate"`
}

// Known reports whether availability data was ever observed for the listing.
func (a Availability) Known() bool {
	return !a.LastChecked.IsZero()
}

// Listing represents one trackable rentable unit in a city. It is created
// and updated by the ingestion side and read-only to the analysis engine.
type Listing struct {
	ID             string          `gorm:"primaryKey;size:36" json:"id"`
	Name           string          `gorm:"size:256;not null" json:"name"`
	Type           ListingType     `gorm:"size:32;index:idx_listings_city_type,priority:2;not null" json:"type"`
	City           string          `gorm:"size:128;index:idx_listings_city_type,priority:1;not null" json:"city"`
	State          string          `gorm:"size:64;not null" json:"state"`
	CurrentPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"currentPrice"`
	Rating         *Rating         `gorm:"embedded" json:"rating"`
	Availability   Availability    `gorm:"embedded" json:"availability"`
	SourcePlatform string          `gorm:"size:32;uniqueIndex:idx_listings_source,priority:1;not null" json:"sourcePlatform"`
	ExternalID     string          `gorm:"size:128;uniqueIndex:idx_listings_source,priority:2" json:"externalId"`
	IsActive       bool            `gorm:"not null" json:"isActive"`
	LastScrapedAt  time.Time       `json:"lastScrapedAt"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`

	// Associations
	PriceHistory []PriceSample `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"priceHistory,omitempty"`
}

// PriceSample is one timestamped observation of a listing's price and
// availability. Immutable once written; owned exclusively by its listing.
type PriceSample struct {
	ID            int64           `gorm:"autoIncrement;primaryKey" json:"-"`
	ListingID     string          `gorm:"size:36;index:idx_samples_listing_ts,priority:1;not null" json:"-"`
	Timestamp     time.Time       `gorm:"index:idx_samples_listing_ts,priority:2;not null" json:"timestamp"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Available     bool            `gorm:"not null" json:"available"`
	OccupancyRate *float64        `json:"occupancyRate"`
}

// RecordPrice is the only legal way to mutate a listing's price fields.
// It appends the sample to the history, prunes everything older than the
// retention window relative to now, and re-syncs CurrentPrice with the most
// recent surviving sample. A sample already outside the window is dropped
// in the same call. Returns whether the sample survived the append.
func RecordPrice(l *Listing, s PriceSample, now time.Time) bool {
	cutoff := now.AddDate(0, 0, -RetentionDays)

	kept := l.PriceHistory[:0]
	for _, h := range l.PriceHistory {
		if !h.Timestamp.Before(cutoff) {
			kept = append(kept, h)
		}
	}
	l.PriceHistory = kept

	appended := false
	if !s.Timestamp.Before(cutoff) {
		s.ListingID = l.ID
		l.PriceHistory = append(l.PriceHistory, s)
		appended = true
	}

	if len(l.PriceHistory) > 0 {
		latest := l.PriceHistory[0]
		for _, h := range l.PriceHistory[1:] {
			if h.Timestamp.After(latest.Timestamp) {
				latest = h
			}
		}
		l.CurrentPrice = latest.Price
	}
	return appended
}

// AveragePrice returns the mean price over the listing's history, or the
// current price when no history exists.
func (l *Listing) AveragePrice() decimal.Decimal {
	if len(l.PriceHistory) == 0 {
		return l.CurrentPrice
	}
	prices := make([]decimal.Decimal, len(l.PriceHistory))
	for i, h := range l.PriceHistory {
		prices[i] = h.Price
	}
	return decimal.Avg(prices[0], prices[1:]...)
}

// Validate reports whether the listing carries well-formed price and rating
// data. Invalid listings are skipped by aggregation, not fatal to a run.
func (l *Listing) Validate() error {
	if l.CurrentPrice.IsNegative() {
		return fmt.Errorf("listing %s: negative current price %s", l.ID, l.CurrentPrice)
	}
	if l.Rating != nil {
		if l.Rating.Score < 0 || l.Rating.Score > 10 {
			return fmt.Errorf("listing %s: rating score %.2f outside [0,10]", l.ID, l.Rating.Score)
		}
		if l.Rating.TotalReviews < 0 {
			return fmt.Errorf("listing %s: negative review count %d", l.ID, l.Rating.TotalReviews)
		}
	}
	return nil
}
