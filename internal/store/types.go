package store

import (
	"time"

	"github.com/shopspring/decimal"

	"hotel-market-backend/internal/model"
)

// ListingUpsert is one observation of a listing delivered by the ingestion
// side, keyed by (SourcePlatform, ExternalID).
type ListingUpsert struct {
	SourcePlatform string            `json:"sourcePlatform"`
	ExternalID     string            `json:"externalId"`
	Name           string            `json:"name"`
	Type           model.ListingType `json:"type"`
	City           string            `json:"city"`
	State          string            `json:"state"`
	Price          decimal.Decimal   `json:"price"`
	Available      bool              `json:"available"`
	OccupancyRate  *float64          `json:"occupancyRate"`
	Rating         *model.Rating     `json:"rating"`
	// ObservedAt defaults to the upsert time when zero.
	ObservedAt time.Time `json:"observedAt"`
}

// ListingFilter narrows a listing query. Zero values mean "no constraint".
type ListingFilter struct {
	City          string
	State         string
	Type          model.ListingType
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	MinRating     *float64
	AvailableOnly bool
}
