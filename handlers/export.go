package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/St0bbe/remix-of-our-little-pix/export"
	"github.com/St0bbe/remix-of-our-little-pix/models"
	"github.com/St0bbe/remix-of-our-little-pix/store"
)

// ExportHandler streams the full backup archive
type ExportHandler struct {
	store *store.PhotoStore
}

// NewExportHandler creates a new export handler
func NewExportHandler(s *store.PhotoStore) *ExportHandler {
	return &ExportHandler{store: s}
}

// ExportBackup streams a zip archive with every photo plus the metadata
// manifest. Progress is logged as each photo is packaged; a mid-stream
// failure aborts the download and the partial archive is discarded by the
// client.
func (h *ExportHandler) ExportBackup(c *gin.Context) {
	photos, err := h.store.FilterPhotos(store.FilterAll, store.FilterAll, store.FilterAll)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch photos"})
		return
	}
	if len(photos) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No photos to export"})
		return
	}

	albums, err := h.store.Albums()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch albums"})
		return
	}

	packager := &export.Packager{
		Photos: photos,
		Albums: albums,
		Open: func(p models.Photo) (io.ReadCloser, error) {
			return os.Open(p.FilePath)
		},
	}

	archiveName := export.ArchiveName(time.Now())
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", `attachment; filename="`+archiveName+`"`)

	start := time.Now()
	err = packager.WriteArchive(c.Writer, func(percent int) {
		slog.Debug("export progress", "percent", percent, "photos", len(photos))
	})
	if err != nil {
		// Headers are already out; all we can do is log and cut the stream
		slog.Error("backup export failed", "error", err)
		c.Abort()
		return
	}

	slog.Info("backup exported",
		"photos", len(photos),
		"albums", len(albums),
		"archive", archiveName,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
