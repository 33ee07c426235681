package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"devocional-backend/internal/store"
)

// GetDevices lists every tracked device with its computed presence.
func (h *Handler) GetDevices(c *gin.Context) {
	now := time.Now().UTC()
	devices := h.devices.Snapshot(now)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"devices": devices,
		"total":   len(devices),
		"online":  h.devices.OnlineCount(now),
	})
}

// DeleteDevice removes one device by id. Referencing an unknown id is a
// soft failure in the body, not an error status.
func (h *Handler) DeleteDevice(c *gin.Context) {
	id := c.Param("id")

	err := h.store.DeleteByDeviceID(c.Request.Context(), id)
	if err == store.ErrNotFound {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "device not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	h.devices.Remove(id)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetCount returns the subscriber count shown on the public page.
func (h *Handler) GetCount(c *gin.Context) {
	count, err := h.store.CountSubscriptions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}
