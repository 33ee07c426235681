package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"devocional-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	cfg := h.cfg
	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	countCache := mw.Cache(cache.New(cacheTTL, 2*cacheTTL), cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Public device endpoints.
		api.POST("/subscribe", h.Subscribe)
		api.POST("/heartbeat", h.Heartbeat)
		api.GET("/count", countCache, h.GetCount)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
		api.GET("/devotional/today", h.GetTodaysDevotional)

		// Admin endpoints behind the auth gate.
		admin := api.Group("")
		admin.Use(mw.AdminAuth(cfg.Server.AdminToken))
		{
			admin.POST("/send", h.Send)
			admin.GET("/devices", h.GetDevices)
			admin.DELETE("/device/:id", h.DeleteDevice)
		}
	}

	return r
}
