package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/St0bbe/remix-of-our-little-pix/middleware"
	"github.com/St0bbe/remix-of-our-little-pix/store"
)

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	store *store.PhotoStore
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(s *store.PhotoStore) *CommentHandler {
	return &CommentHandler{store: s}
}

// AddComment appends a comment (or a reply to a top-level comment) to a photo
func (h *CommentHandler) AddComment(c *gin.Context) {
	photoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid photo ID"})
		return
	}

	var req struct {
		Text     string     `json:"text" binding:"required"`
		ParentID *uuid.UUID `json:"parent_id"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": processValidationError(err)})
		return
	}

	comment, err := h.store.AddComment(photoID, req.Text, middleware.GetEmail(c), req.ParentID)
	if err != nil {
		respondStoreError(c, err, "Photo not found", "Failed to add comment")
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// GetComments returns a photo's comments in insertion order
func (h *CommentHandler) GetComments(c *gin.Context) {
	photoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid photo ID"})
		return
	}

	comments, err := h.store.Comments(photoID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
