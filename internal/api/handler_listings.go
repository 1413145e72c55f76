package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"hotel-market-backend/internal/analysis"
	"hotel-market-backend/internal/model"
	"hotel-market-backend/internal/store"
)

// PostListings ingests a batch of listing observations. Prices only enter
// history through this path; samples for unchanged prices are not appended.
func (h *Handler) PostListings(c *gin.Context) {
	var items []store.ListingUpsert
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty batch"})
		return
	}

	for i, item := range items {
		switch {
		case item.SourcePlatform == "" || item.ExternalID == "":
			c.JSON(http.StatusBadRequest, gin.H{"error": "sourcePlatform and externalId are required", "index": i})
			return
		case item.City == "" || item.Name == "":
			c.JSON(http.StatusBadRequest, gin.H{"error": "city and name are required", "index": i})
			return
		case item.Price.IsNegative():
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative", "index": i})
			return
		case item.Rating != nil && (item.Rating.Score < 0 || item.Rating.Score > 10):
			c.JSON(http.StatusBadRequest, gin.H{"error": "rating score must be within [0, 10]", "index": i})
			return
		}
	}

	if err := h.store.UpsertListings(c.Request.Context(), time.Now().UTC(), items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.flush()
	c.JSON(http.StatusCreated, gin.H{"upserted": len(items)})
}

// GetListings lists active listings, optionally filtered by query params.
func (h *Handler) GetListings(c *gin.Context) {
	var filter store.ListingFilter
	filter.City = c.Query("city")
	filter.State = c.Query("state")
	filter.Type = model.ListingType(c.Query("type"))
	filter.AvailableOnly = c.Query("available") == "true"

	if v := c.Query("minPrice"); v != "" {
		p, err := decimal.NewFromString(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid minPrice"})
			return
		}
		filter.MinPrice = &p
	}
	if v := c.Query("maxPrice"); v != "" {
		p, err := decimal.NewFromString(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid maxPrice"})
			return
		}
		filter.MaxPrice = &p
	}
	if v := c.Query("minRating"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid minRating"})
			return
		}
		filter.MinRating = &r
	}

	listings, err := h.store.ListListings(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"total": len(listings), "listings": listings})
}

// GetListing returns one listing with its price history.
func (h *Handler) GetListing(c *gin.Context) {
	listing, err := h.store.FindListing(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, listing)
}

// GetListingTrend returns one listing's windowed price trend.
func (h *Handler) GetListingTrend(c *gin.Context) {
	days := analysis.DemandTrendWindowDays
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > model.RetentionDays {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 365"})
			return
		}
		days = n
	}

	listing, err := h.store.FindListing(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	c.JSON(http.StatusOK, gin.H{
		"listingId":    listing.ID,
		"windowDays":   days,
		"trendPct":     analysis.Trend(listing.PriceHistory, days, now),
		"samples":      len(listing.PriceHistory),
		"currentPrice": listing.CurrentPrice,
	})
}
