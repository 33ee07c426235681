package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"devocional-backend/internal/store"
)

// GetTodaysDevotional returns today's devotional metadata, using the
// scheduler's configured GMT offset so "today" matches notification day
// boundaries.
func (h *Handler) GetTodaysDevotional(c *gin.Context) {
	offset := time.FixedZone("local", h.cfg.Scheduler.GMTOffsetHours*3600)
	date := time.Now().In(offset).Format("2006-01-02")

	dev, err := h.store.DevotionalForDate(c.Request.Context(), date)
	if err == store.ErrNotFound {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "no devotional for today"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "devotional": dev})
}
