package api

import (
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"devocional-backend/internal/store"
	"devocional-backend/internal/useragent"
)

type heartbeatRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// Heartbeat refreshes a device's liveness. The device cache is always
// updated synchronously; the database write is throttled to a fraction
// of heartbeats to bound write amplification. A heartbeat for an unknown
// endpoint is a soft failure and never creates a registration.
func (h *Handler) Heartbeat(c *gin.Context) {
	var req heartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "endpoint is required"})
		return
	}

	sub, err := h.store.GetSubscription(c.Request.Context(), req.Endpoint)
	if err == store.ErrNotFound {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "device not registered"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	// The device may have moved networks or updated its browser, so UA
	// and geo are re-derived on every contact.
	sub.LastSeen = time.Now().UTC()
	if ua := c.GetHeader("User-Agent"); ua != "" {
		sub.UserAgent = ua
		sub.Device = useragent.Parse(ua)
	}
	if ip := c.ClientIP(); ip != "" && ip != sub.IP {
		sub.IP = ip
		sub.Location = h.geo.Resolve(c.Request.Context(), ip)
	}

	h.devices.Put(*sub)

	if rand.Float64() < h.cfg.Heartbeat.FlushProbability {
		if err := h.store.TouchSubscription(c.Request.Context(), sub); err != nil {
			log.Printf("Failed to persist heartbeat for %s: %v", sub.DeviceID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
