package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hotel-market-backend/internal/analysis"
	"hotel-market-backend/internal/engine"
	"hotel-market-backend/internal/model"
)

// latestSnapshot resolves a city's snapshot for read endpoints, generating
// one only when the city has never been analyzed. Returns nil after writing
// the error response.
func (h *Handler) latestSnapshot(c *gin.Context) *model.MarketSnapshot {
	city := c.Param("city")
	snap, err := h.engine.LatestOrAnalyze(c.Request.Context(), city)
	if errors.Is(err, engine.ErrNoListings) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no listings for city", "city": city})
		return nil
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil
	}
	return snap
}

// GetMarketAnalysis returns the latest snapshot for a city, generating one
// on first request.
func (h *Handler) GetMarketAnalysis(c *gin.Context) {
	if snap := h.latestSnapshot(c); snap != nil {
		c.JSON(http.StatusOK, snap)
	}
}

// GenerateMarketAnalysis forces a fresh analysis run for a city.
func (h *Handler) GenerateMarketAnalysis(c *gin.Context) {
	city := c.Param("city")
	snap, err := h.engine.AnalyzeCity(c.Request.Context(), city)
	if errors.Is(err, engine.ErrNoListings) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no listings for city", "city": city})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.flush()
	c.JSON(http.StatusCreated, snap)
}

// GetMarketHistory returns a city's past snapshots, newest first.
func (h *Handler) GetMarketHistory(c *gin.Context) {
	city := c.Param("city")

	limit := h.historyLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		if n < limit {
			limit = n
		}
	}

	snaps, err := h.store.ListSnapshots(c.Request.Context(), city, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"city": city, "total": len(snaps), "snapshots": snaps})
}

// GetDemand computes the live demand score for a city from its current
// listings. Unlike the other analysis reads it never serves a stored
// snapshot and never writes one.
func (h *Handler) GetDemand(c *gin.Context) {
	city := c.Param("city")

	listings, err := h.store.FindActiveListingsByCity(c.Request.Context(), city)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(listings) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no listings for city", "city": city})
		return
	}

	now := time.Now().UTC()
	c.JSON(http.StatusOK, gin.H{
		"city":        city,
		"generatedAt": now,
		"demand":      analysis.ScoreDemand(listings, now),
	})
}

// GetOccupancy returns the occupancy slice of a city's latest snapshot.
func (h *Handler) GetOccupancy(c *gin.Context) {
	if snap := h.latestSnapshot(c); snap != nil {
		c.JSON(http.StatusOK, gin.H{
			"city":         snap.City,
			"analysisDate": snap.AnalysisDate,
			"occupancy":    snap.Occupancy,
		})
	}
}

// GetComparison returns the competitive slice of a city's latest snapshot
// alongside the price distribution it was ranked against.
func (h *Handler) GetComparison(c *gin.Context) {
	if snap := h.latestSnapshot(c); snap != nil {
		c.JSON(http.StatusOK, gin.H{
			"city":         snap.City,
			"analysisDate": snap.AnalysisDate,
			"competitive":  snap.Competitive,
			"price":        snap.Price,
		})
	}
}

// GetTrends computes the per-listing trend rollup for a city over an
// optional window.
func (h *Handler) GetTrends(c *gin.Context) {
	city := c.Param("city")

	days := analysis.DemandTrendWindowDays
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > model.RetentionDays {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 365"})
			return
		}
		days = n
	}

	listings, err := h.store.FindActiveListingsByCity(c.Request.Context(), city)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(listings) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no listings for city", "city": city})
		return
	}

	c.JSON(http.StatusOK, analysis.SummarizeTrends(city, listings, days, time.Now().UTC()))
}
