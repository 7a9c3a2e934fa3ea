// Package export produces a single downloadable backup archive holding
// every photo's binary payload plus a metadata manifest.
package export

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/St0bbe/remix-of-our-little-pix/models"
)

// PhotoMetadata mirrors a photo's metadata with the binary payload
// reference replaced by the synthesized archive filename
type PhotoMetadata struct {
	ID          uuid.UUID            `json:"id"`
	FileName    string               `json:"fileName"`
	Date        string               `json:"date"`
	Category    models.PhotoCategory `json:"category"`
	ChildName   string               `json:"child_name"`
	Title       string               `json:"title,omitempty"`
	Description string               `json:"description,omitempty"`
	AlbumID     *uuid.UUID           `json:"album_id,omitempty"`
	IsFavorite  bool                 `json:"is_favorite"`
	UploadedBy  string               `json:"uploaded_by,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// Manifest is the metadata.json document written into the archive
type Manifest struct {
	ExportDate  time.Time       `json:"exportDate"`
	TotalPhotos int             `json:"totalPhotos"`
	Albums      []models.Album  `json:"albums"`
	Photos      []PhotoMetadata `json:"photos"`
}

// FileName synthesizes the archive filename for a photo:
// date, subject name (spaces dashed) and an id fragment keep it unique and
// human-sortable.
func FileName(p models.Photo) string {
	ext := filepath.Ext(p.FilePath)
	if ext == "" {
		ext = ".jpg"
	}
	child := strings.ReplaceAll(p.ChildName, " ", "-")
	return fmt.Sprintf("%s_%s_%s%s", p.Date, child, p.ID.String()[:8], ext)
}

// ArchiveName returns the download filename, dated for uniqueness
func ArchiveName(now time.Time) string {
	return fmt.Sprintf("family-album-backup-%s.zip", now.Format("2006-01-02"))
}

// BuildManifest assembles the export manifest for the given collections
func BuildManifest(photos []models.Photo, albums []models.Album, now time.Time) Manifest {
	metas := make([]PhotoMetadata, 0, len(photos))
	for _, p := range photos {
		metas = append(metas, PhotoMetadata{
			ID:          p.ID,
			FileName:    FileName(p),
			Date:        p.Date,
			Category:    p.Category,
			ChildName:   p.ChildName,
			Title:       p.Title,
			Description: p.Description,
			AlbumID:     p.AlbumID,
			IsFavorite:  p.IsFavorite,
			UploadedBy:  p.UploadedBy,
			CreatedAt:   p.CreatedAt,
		})
	}
	return Manifest{
		ExportDate:  now,
		TotalPhotos: len(photos),
		Albums:      albums,
		Photos:      metas,
	}
}

// Packager streams the archive. Open is called once per photo and must
// return the binary payload; it is injected so tests and alternative
// storage backends can supply payloads without touching the filesystem.
type Packager struct {
	Photos []models.Photo
	Albums []models.Album
	Open   func(p models.Photo) (io.ReadCloser, error)
	Now    func() time.Time
}

// WriteArchive writes the full backup to w: the manifest under
// data/metadata.json, then each photo under photos/ with its synthesized
// filename. progress, if non-nil, receives a percentage after each step.
// A failure aborts the export; the partial archive must be discarded by
// the caller. There is no resume.
func (pk *Packager) WriteArchive(w io.Writer, progress func(percent int)) error {
	report := func(pct int) {
		if progress != nil {
			progress(pct)
		}
	}
	now := time.Now
	if pk.Now != nil {
		now = pk.Now
	}

	zw := zip.NewWriter(w)

	manifest := BuildManifest(pk.Photos, pk.Albums, now())
	manifestFile, err := zw.Create("data/metadata.json")
	if err != nil {
		return fmt.Errorf("failed to create manifest entry: %w", err)
	}
	enc := json.NewEncoder(manifestFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(manifest); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	report(10)

	for i, photo := range pk.Photos {
		if err := pk.writePhoto(zw, photo); err != nil {
			return fmt.Errorf("failed to export photo %s: %w", photo.ID, err)
		}
		report(10 + (i+1)*80/len(pk.Photos))
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	report(100)
	return nil
}

func (pk *Packager) writePhoto(zw *zip.Writer, photo models.Photo) error {
	payload, err := pk.Open(photo)
	if err != nil {
		return err
	}
	defer payload.Close()

	entry, err := zw.Create("photos/" + FileName(photo))
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, payload)
	return err
}
