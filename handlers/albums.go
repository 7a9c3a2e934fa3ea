package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/St0bbe/remix-of-our-little-pix/models"
	"github.com/St0bbe/remix-of-our-little-pix/store"
)

// AlbumHandler handles album-related HTTP requests
type AlbumHandler struct {
	store *store.PhotoStore
}

// NewAlbumHandler creates a new album handler
func NewAlbumHandler(s *store.PhotoStore) *AlbumHandler {
	return &AlbumHandler{store: s}
}

// CreateAlbum creates a new album
func (h *AlbumHandler) CreateAlbum(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,min=1,max=100"`
		Description string `json:"description" binding:"max=500"`
		Color       string `json:"color"`
		Icon        string `json:"icon"`
		IsPublic    bool   `json:"is_public"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": processValidationError(err)})
		return
	}

	album, err := h.store.AddAlbum(store.NewAlbum{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		respondStoreError(c, err, "Album not found", "Failed to create album")
		return
	}

	c.JSON(http.StatusCreated, album)
}

// GetAlbums returns all albums
func (h *AlbumHandler) GetAlbums(c *gin.Context) {
	albums, err := h.store.Albums()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch albums"})
		return
	}
	c.JSON(http.StatusOK, albums)
}

// GetAlbum returns a specific album by ID
func (h *AlbumHandler) GetAlbum(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid album ID"})
		return
	}

	album, err := h.store.GetAlbum(id)
	if err != nil {
		respondStoreError(c, err, "Album not found", "Failed to fetch album")
		return
	}
	c.JSON(http.StatusOK, album)
}

// UpdateAlbum merges a patch into the album
func (h *AlbumHandler) UpdateAlbum(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid album ID"})
		return
	}

	var patch models.AlbumPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": processValidationError(err)})
		return
	}

	album, err := h.store.UpdateAlbum(id, patch)
	if err != nil {
		respondStoreError(c, err, "Album not found", "Failed to update album")
		return
	}
	c.JSON(http.StatusOK, album)
}

// DeleteAlbum deletes an album, detaching its photos
func (h *AlbumHandler) DeleteAlbum(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid album ID"})
		return
	}

	if err := h.store.DeleteAlbum(id); err != nil {
		respondStoreError(c, err, "Album not found", "Failed to delete album")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Album deleted successfully"})
}

// GetAlbumPhotos returns the photos currently in the album
func (h *AlbumHandler) GetAlbumPhotos(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid album ID"})
		return
	}

	if _, err := h.store.GetAlbum(id); err != nil {
		respondStoreError(c, err, "Album not found", "Failed to fetch album")
		return
	}

	photos, err := h.store.AlbumPhotos(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch album photos"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"photos": photos})
}
