package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/St0bbe/remix-of-our-little-pix/models"
	"github.com/St0bbe/remix-of-our-little-pix/store"
)

// ShareHandler handles share-link minting and public resolution
type ShareHandler struct {
	store *store.PhotoStore
}

// NewShareHandler creates a new share handler
func NewShareHandler(s *store.PhotoStore) *ShareHandler {
	return &ShareHandler{store: s}
}

// CreateShareLink mints (or re-returns) the share token for a target
func (h *ShareHandler) CreateShareLink(c *gin.Context) {
	var req struct {
		Kind     models.ShareKind `json:"kind" binding:"required"`
		TargetID uuid.UUID        `json:"target_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": processValidationError(err)})
		return
	}

	link, err := h.store.CreateShareLink(req.Kind, req.TargetID)
	if err != nil {
		respondStoreError(c, err, "Share target not found", "Failed to create share link")
		return
	}

	c.JSON(http.StatusCreated, link)
}

// GetSharedContent resolves a share token without authentication. An
// unknown or stale token yields a 404 with no detail, which the client
// renders as a generic link-not-found page.
func (h *ShareHandler) GetSharedContent(c *gin.Context) {
	token := c.Param("token")

	content, err := h.store.ResolveShare(token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve share link"})
		return
	}
	if content == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}

	c.JSON(http.StatusOK, content)
}
