package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devocional-backend/internal/notification"
)

type sendRequest struct {
	Title  string              `json:"title"`
	Body   string              `json:"body"`
	URL    string              `json:"url"`
	Target notification.Target `json:"target"`
}

// Send dispatches a notification to the selected audience. Validation
// failures reject before any delivery attempt; delivery failures are
// reported in the counts, never as a request error.
func (h *Handler) Send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "title is required"})
		return
	}
	if req.Target.Type == "" {
		req.Target.Type = notification.TargetAll
	}
	if err := req.Target.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.dispatcher.Send(c.Request.Context(), req.Target, notification.Payload{
		Title: req.Title,
		Body:  req.Body,
		URL:   req.URL,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sent": result.Sent, "failed": result.Failed})
}
