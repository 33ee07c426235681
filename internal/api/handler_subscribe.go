package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"devocional-backend/internal/model"
	"devocional-backend/internal/store"
	"devocional-backend/internal/useragent"
)

type subscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	Keys     struct {
		P256DH string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

// newDeviceID derives a stable device identifier from the creation
// timestamp. Assigned once, never reassigned.
func newDeviceID(now time.Time) string {
	return strconv.FormatInt(now.UnixNano(), 36)
}

// Subscribe registers a device or refreshes an existing registration.
// Repeat registration of the same endpoint preserves the device id and
// createdAt; everything derived (keys, UA, geo, lastSeen) is refreshed.
func (h *Handler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid subscription payload"})
		return
	}

	now := time.Now().UTC()
	ua := c.GetHeader("User-Agent")
	ip := c.ClientIP()

	sub := model.Subscription{
		Endpoint:  req.Endpoint,
		P256DH:    req.Keys.P256DH,
		Auth:      req.Keys.Auth,
		UserAgent: ua,
		Device:    useragent.Parse(ua),
		IP:        ip,
		// Geo enrichment is best-effort and never blocks registration.
		Location:  h.geo.Resolve(c.Request.Context(), ip),
		CreatedAt: now,
		LastSeen:  now,
	}

	existing, err := h.store.GetSubscription(c.Request.Context(), req.Endpoint)
	switch {
	case err == nil:
		sub.DeviceID = existing.DeviceID
		sub.CreatedAt = existing.CreatedAt
	case err == store.ErrNotFound:
		sub.DeviceID = newDeviceID(now)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err := h.store.UpsertSubscription(c.Request.Context(), &sub); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	h.devices.Put(sub)

	c.JSON(http.StatusOK, gin.H{"success": true, "id": sub.DeviceID})
}
