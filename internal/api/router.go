package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"hotel-market-backend/config"
	"hotel-market-backend/internal/engine"
	"hotel-market-backend/internal/mw"
	"hotel-market-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, eng *engine.Service, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	rps := cfg.Server.RateLimitPerSec
	if rps <= 0 {
		rps = 10
	}
	rateLimiter := mw.RateLimiter(rate.Limit(rps), int(rps)/2+1, cfg.Server.RequestIPHeader)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	handler := NewHandler(s, eng, webpushOptions, cfg.Analysis.HistoryLimit, cacheStore.Flush)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/health", handler.GetHealth)

		api.POST("/listings", handler.PostListings)
		api.GET("/listings", caching, handler.GetListings)
		api.GET("/listings/:id", caching, handler.GetListing)
		api.GET("/listings/:id/trend", caching, handler.GetListingTrend)

		analysis := api.Group("/analysis")
		{
			analysis.GET("/market/:city", caching, handler.GetMarketAnalysis)
			analysis.POST("/market/:city/generate", handler.GenerateMarketAnalysis)
			analysis.GET("/market/:city/history", caching, handler.GetMarketHistory)
			analysis.GET("/demand/:city", caching, handler.GetDemand)
			analysis.GET("/occupancy/:city", caching, handler.GetOccupancy)
			analysis.GET("/comparison/:city", caching, handler.GetComparison)
			analysis.GET("/trends/:city", caching, handler.GetTrends)
		}

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
