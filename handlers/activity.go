package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/St0bbe/remix-of-our-little-pix/store"
)

// ActivityHandler serves the activity feed and aggregate statistics
type ActivityHandler struct {
	store *store.PhotoStore
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(s *store.PhotoStore) *ActivityHandler {
	return &ActivityHandler{store: s}
}

// GetActivity returns the newest feed entries, most recent first
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	limit := 0
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	items, err := h.store.Activity(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch activity"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": items})
}

// GetStats returns aggregate collection counts
func (h *ActivityHandler) GetStats(c *gin.Context) {
	stats, err := h.store.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
