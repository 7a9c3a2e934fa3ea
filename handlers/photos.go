package handlers

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nfnt/resize"

	"github.com/St0bbe/remix-of-our-little-pix/config"
	"github.com/St0bbe/remix-of-our-little-pix/middleware"
	"github.com/St0bbe/remix-of-our-little-pix/models"
	"github.com/St0bbe/remix-of-our-little-pix/store"
)

const thumbnailSize = 300

// PhotoHandler handles photo-related HTTP requests
type PhotoHandler struct {
	store  *store.PhotoStore
	config *config.Config
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(s *store.PhotoStore, cfg *config.Config) *PhotoHandler {
	return &PhotoHandler{store: s, config: cfg}
}

// UploadPhotos handles photo upload. One or more files share the submitted
// metadata; all of them are added in a single batch so a bad entry never
// leaves a partial upload behind.
func (h *PhotoHandler) UploadPhotos(c *gin.Context) {
	err := c.Request.ParseMultipartForm(h.config.MaxFileSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large or invalid form data"})
		return
	}

	date := c.PostForm("date")
	category := models.PhotoCategory(c.PostForm("category"))
	childName := c.PostForm("child_name")
	title := c.PostForm("title")
	description := c.PostForm("description")

	var albumID *uuid.UUID
	if albumIDStr := c.PostForm("album_id"); albumIDStr != "" {
		id, err := uuid.Parse(albumIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid album ID"})
			return
		}
		albumID = &id
	}

	form := c.Request.MultipartForm
	files := form.File["photos"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No photo files provided"})
		return
	}

	if err := os.MkdirAll(h.config.ImagesPath, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create images directory"})
		return
	}

	uploadedBy := middleware.GetEmail(c)
	var entries []store.NewPhoto
	var savedFiles []string

	cleanup := func() {
		for _, path := range savedFiles {
			os.Remove(path)
		}
	}

	for _, header := range files {
		if !h.isValidImageType(header.Header.Get("Content-Type")) {
			cleanup()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image type. Supported types: JPEG, PNG, GIF, WebP"})
			return
		}
		if header.Size > h.config.MaxFileSize {
			cleanup()
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("File size exceeds maximum allowed size of %d bytes", h.config.MaxFileSize)})
			return
		}

		entry, paths, err := h.saveUpload(header)
		if err != nil {
			cleanup()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image file"})
			return
		}
		savedFiles = append(savedFiles, paths...)

		entry.Date = date
		entry.Category = category
		entry.ChildName = childName
		entry.Title = title
		entry.Description = description
		entry.AlbumID = albumID
		entry.UploadedBy = uploadedBy
		entries = append(entries, *entry)
	}

	photos, err := h.store.AddPhotos(entries, sessionID(c))
	if err != nil {
		cleanup()
		respondStoreError(c, err, "Album not found", "Failed to save photos")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"photos": photos})
}

// GetPhotos returns photos filtered by category, child and album.
// Missing filters default to the match-everything sentinel.
func (h *PhotoHandler) GetPhotos(c *gin.Context) {
	category := c.DefaultQuery("category", store.FilterAll)
	child := c.DefaultQuery("child", store.FilterAll)
	album := c.DefaultQuery("album", store.FilterAll)

	photos, err := h.store.FilterPhotos(category, child, album)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch photos"})
		return
	}

	children, err := h.store.Children()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch photos"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"photos":   photos,
		"children": children,
	})
}

// GetTimeline returns photos grouped by month, newest month first
func (h *PhotoHandler) GetTimeline(c *gin.Context) {
	groups, err := h.store.PhotosByMonth()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch timeline"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"months": groups})
}

// GetFavorites returns all favorited photos
func (h *PhotoHandler) GetFavorites(c *gin.Context) {
	photos, err := h.store.Favorites()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch favorites"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"photos": photos})
}

// GetPhoto returns a specific photo with its comments
func (h *PhotoHandler) GetPhoto(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid photo ID"})
		return
	}

	photo, err := h.store.GetPhoto(id)
	if err != nil {
		respondStoreError(c, err, "Photo not found", "Failed to fetch photo")
		return
	}
	c.JSON(http.StatusOK, photo)
}

// UpdatePhoto merges a patch into the photo's metadata
func (h *PhotoHandler) UpdatePhoto(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid photo ID"})
		return
	}

	var patch models.PhotoPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": processValidationError(err)})
		return
	}

	photo, err := h.store.UpdatePhoto(id, patch)
	if err != nil {
		respondStoreError(c, err, "Photo not found", "Failed to update photo")
		return
	}
	c.JSON(http.StatusOK, photo)
}

// ToggleFavorite flips the photo's favorite flag
func (h *PhotoHandler) ToggleFavorite(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid photo ID"})
		return
	}

	photo, err := h.store.ToggleFavorite(id, middleware.GetEmail(c))
	if err != nil {
		respondStoreError(c, err, "Photo not found", "Failed to update photo")
		return
	}
	c.JSON(http.StatusOK, photo)
}

// DeletePhoto deletes a photo and its files
func (h *PhotoHandler) DeletePhoto(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid photo ID"})
		return
	}

	// Look the photo up first so the files can be removed after the
	// record is gone. A missing photo is a benign no-op.
	photo, err := h.store.GetPhoto(id)
	if err != nil && err != store.ErrNotFound {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch photo"})
		return
	}

	if err := h.store.DeletePhoto(id, sessionID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete photo"})
		return
	}

	if photo != nil {
		// DB record is already gone; file removal failures are logged by
		// the OS layer and never fail the request
		if photo.FilePath != "" {
			os.Remove(photo.FilePath)
		}
		if photo.ThumbnailPath != "" {
			os.Remove(photo.ThumbnailPath)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Photo deleted successfully"})
}

// ServePhoto serves the actual photo file
func (h *PhotoHandler) ServePhoto(c *gin.Context) {
	h.serveFile(c, false)
}

// ServeThumbnail serves the photo's thumbnail, falling back to the
// original file when no thumbnail was generated
func (h *PhotoHandler) ServeThumbnail(c *gin.Context) {
	h.serveFile(c, true)
}

func (h *PhotoHandler) serveFile(c *gin.Context, thumbnail bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid photo ID"})
		return
	}

	photo, err := h.store.GetPhoto(id)
	if err != nil {
		respondStoreError(c, err, "Photo not found", "Failed to fetch photo")
		return
	}

	path := photo.FilePath
	if thumbnail && photo.ThumbnailPath != "" {
		path = photo.ThumbnailPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Photo file not found"})
		return
	}

	c.Header("Content-Type", photo.MimeType)
	c.File(path)
}

// Helper methods

func (h *PhotoHandler) isValidImageType(mimeType string) bool {
	for _, allowedType := range h.config.AllowedTypes {
		if mimeType == allowedType {
			return true
		}
	}
	return false
}

// saveUpload writes the uploaded file plus a thumbnail to the images
// directory and returns a photo entry carrying the file metadata
func (h *PhotoHandler) saveUpload(header *multipart.FileHeader) (*store.NewPhoto, []string, error) {
	file, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, nil, err
	}
	bounds := img.Bounds()

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, nil, err
	}

	filename := h.generateUniqueFilename(header.Filename)
	filePath := filepath.Join(h.config.ImagesPath, filename)

	dst, err := os.Create(filePath)
	if err != nil {
		return nil, nil, err
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(filePath)
		return nil, nil, err
	}
	dst.Close()
	saved := []string{filePath}

	// Thumbnail generation is best-effort: a photo without one is served
	// from the original file
	thumbPath := ""
	thumb := resize.Thumbnail(thumbnailSize, thumbnailSize, img, resize.Lanczos3)
	thumbPath = filepath.Join(h.config.ImagesPath, "thumb_"+strings.TrimSuffix(filename, filepath.Ext(filename))+".jpg")
	thumbFile, err := os.Create(thumbPath)
	if err == nil {
		if err := jpeg.Encode(thumbFile, thumb, &jpeg.Options{Quality: 80}); err != nil {
			thumbFile.Close()
			os.Remove(thumbPath)
			thumbPath = ""
		} else {
			thumbFile.Close()
			saved = append(saved, thumbPath)
		}
	} else {
		thumbPath = ""
	}

	return &store.NewPhoto{
		FilePath:      filePath,
		ThumbnailPath: thumbPath,
		MimeType:      header.Header.Get("Content-Type"),
		FileSize:      header.Size,
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
	}, saved, nil
}

func (h *PhotoHandler) generateUniqueFilename(originalName string) string {
	ext := filepath.Ext(originalName)
	name := strings.TrimSuffix(originalName, ext)
	timestamp := time.Now().Unix()
	fragment := uuid.New().String()[:8]
	return fmt.Sprintf("%s_%d_%s%s", name, timestamp, fragment, ext)
}

// sessionID identifies the writing browser session for cross-session
// notification bookkeeping
func sessionID(c *gin.Context) string {
	return c.GetHeader("X-Session-ID")
}
