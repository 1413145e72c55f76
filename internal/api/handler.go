package api

import (
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"hotel-market-backend/internal/engine"
	"hotel-market-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store        store.Store
	engine       *engine.Service
	webpush      *webpush.Options
	historyLimit int
	// flushCache invalidates the response cache after writes. May be nil.
	flushCache func()
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, eng *engine.Service, webpushOptions *webpush.Options, historyLimit int, flushCache func()) *Handler {
	if historyLimit <= 0 {
		historyLimit = 30
	}
	return &Handler{
		store:        s,
		engine:       eng,
		webpush:      webpushOptions,
		historyLimit: historyLimit,
		flushCache:   flushCache,
	}
}

func (h *Handler) flush() {
	if h.flushCache != nil {
		h.flushCache()
	}
}

// GetHealth reports service liveness.
func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
