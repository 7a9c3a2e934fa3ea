// Package store is the single source of truth for photos, albums, comments,
// shared links and the activity feed. All mutations run as transactions
// against the injected database handle, so nothing is ever observable in a
// half-applied state.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/St0bbe/remix-of-our-little-pix/models"
)

// FilterAll is the sentinel that matches everything for a filter dimension
const FilterAll = "all"

// activityCap bounds the activity feed; oldest entries are evicted first
const activityCap = 100

// activitySnippetLen bounds the comment snapshot stored on a feed entry
const activitySnippetLen = 120

// ChangeEvent describes a storage-level change observers are told about
type ChangeEvent struct {
	TotalPhotos int64
	// Origin identifies the session that performed the write, so
	// subscribers can avoid notifying the writer about its own change.
	Origin string
}

// PhotoStore owns all photo-related entities and derives the query views
type PhotoStore struct {
	db *gorm.DB

	mu        sync.Mutex
	observers []func(ChangeEvent)
}

// New creates a store over the given database handle and seeds the default
// album set if the album collection is empty. Seeding is idempotent per
// database: it only ever happens once.
func New(db *gorm.DB) (*PhotoStore, error) {
	s := &PhotoStore{db: db}

	var count int64
	if err := db.Model(&models.Album{}).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count albums: %w", err)
	}
	if count == 0 {
		defaults := models.DefaultAlbums()
		if err := db.Create(&defaults).Error; err != nil {
			return nil, fmt.Errorf("failed to seed default albums: %w", err)
		}
		slog.Info("seeded default albums", "count", len(defaults))
	}

	return s, nil
}

// OnChange registers a callback invoked after every successful mutation
// that changes the photo count
func (s *PhotoStore) OnChange(fn func(ChangeEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *PhotoStore) notifyChange(origin string) {
	var total int64
	if err := s.db.Model(&models.Photo{}).Count(&total).Error; err != nil {
		slog.Warn("failed to count photos for change notification", "error", err)
		return
	}

	s.mu.Lock()
	observers := make([]func(ChangeEvent), len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	event := ChangeEvent{TotalPhotos: total, Origin: origin}
	for _, fn := range observers {
		fn(event)
	}
}

// NewPhoto describes a photo about to be added
type NewPhoto struct {
	FilePath      string
	ThumbnailPath string
	MimeType      string
	FileSize      int64
	Width         int
	Height        int
	Date          string // YYYY-MM-DD
	Category      models.PhotoCategory
	ChildName     string
	Title         string
	Description   string
	AlbumID       *uuid.UUID
	UploadedBy    string
}

func (e *NewPhoto) validate() error {
	e.ChildName = strings.TrimSpace(e.ChildName)
	if e.ChildName == "" {
		return validationError("child name is required")
	}
	if len(e.ChildName) > models.MaxChildNameLength {
		return validationError(fmt.Sprintf("child name must be at most %d characters", models.MaxChildNameLength))
	}
	if !e.Category.Valid() {
		return validationError(fmt.Sprintf("invalid category %q", e.Category))
	}
	if _, err := time.Parse("2006-01-02", e.Date); err != nil {
		return validationError("date must be in YYYY-MM-DD format")
	}
	if len(e.Title) > models.MaxTitleLength {
		return validationError(fmt.Sprintf("title must be at most %d characters", models.MaxTitleLength))
	}
	if len(e.Description) > models.MaxDescriptionLength {
		return validationError(fmt.Sprintf("description must be at most %d characters", models.MaxDescriptionLength))
	}
	return nil
}

// AddPhotos validates and appends one or more photos in a single
// transaction. Validation happens for every entry before anything is
// written, so a bad entry never leaves a partial batch behind. Observers
// are told the new total once the transaction commits; origin identifies
// the writing session.
func (s *PhotoStore) AddPhotos(entries []NewPhoto, origin string) ([]models.Photo, error) {
	if len(entries) == 0 {
		return nil, validationError("no photos to add")
	}
	for i := range entries {
		if err := entries[i].validate(); err != nil {
			return nil, err
		}
	}

	photos := make([]models.Photo, 0, len(entries))
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, e := range entries {
			if e.AlbumID != nil {
				var album models.Album
				if err := tx.First(&album, "id = ?", *e.AlbumID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return validationError("album does not exist")
					}
					return err
				}
			}

			photo := models.Photo{
				FilePath:      e.FilePath,
				ThumbnailPath: e.ThumbnailPath,
				MimeType:      e.MimeType,
				FileSize:      e.FileSize,
				Width:         e.Width,
				Height:        e.Height,
				Date:          e.Date,
				Category:      e.Category,
				ChildName:     e.ChildName,
				Title:         strings.TrimSpace(e.Title),
				Description:   strings.TrimSpace(e.Description),
				AlbumID:       e.AlbumID,
				UploadedBy:    e.UploadedBy,
			}
			if err := tx.Create(&photo).Error; err != nil {
				return err
			}

			if err := appendActivity(tx, models.ActivityItem{
				Kind:       models.ActivityPhotoAdded,
				UserEmail:  e.UploadedBy,
				PhotoID:    &photo.ID,
				PhotoTitle: photo.Title,
			}); err != nil {
				return err
			}

			photos = append(photos, photo)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyChange(origin)
	return photos, nil
}

// GetPhoto returns a single photo with its comments
func (s *PhotoStore) GetPhoto(id uuid.UUID) (*models.Photo, error) {
	var photo models.Photo
	err := s.db.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at, id")
	}).First(&photo, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

// UpdatePhoto merges the patch into the matching photo. Only fields set on
// the patch are touched.
func (s *PhotoStore) UpdatePhoto(id uuid.UUID, patch models.PhotoPatch) (*models.Photo, error) {
	var photo models.Photo
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&photo, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if patch.Date != nil {
			if _, err := time.Parse("2006-01-02", *patch.Date); err != nil {
				return validationError("date must be in YYYY-MM-DD format")
			}
			photo.Date = *patch.Date
		}
		if patch.Category != nil {
			if !patch.Category.Valid() {
				return validationError(fmt.Sprintf("invalid category %q", *patch.Category))
			}
			photo.Category = *patch.Category
		}
		if patch.ChildName != nil {
			name := strings.TrimSpace(*patch.ChildName)
			if name == "" {
				return validationError("child name is required")
			}
			if len(name) > models.MaxChildNameLength {
				return validationError(fmt.Sprintf("child name must be at most %d characters", models.MaxChildNameLength))
			}
			photo.ChildName = name
		}
		if patch.Title != nil {
			if len(*patch.Title) > models.MaxTitleLength {
				return validationError(fmt.Sprintf("title must be at most %d characters", models.MaxTitleLength))
			}
			photo.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			if len(*patch.Description) > models.MaxDescriptionLength {
				return validationError(fmt.Sprintf("description must be at most %d characters", models.MaxDescriptionLength))
			}
			photo.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.AlbumID != nil {
			var album models.Album
			if err := tx.First(&album, "id = ?", *patch.AlbumID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return validationError("album does not exist")
				}
				return err
			}
			photo.AlbumID = patch.AlbumID
		} else if patch.ClearAlbum {
			photo.AlbumID = nil
		}

		return tx.Save(&photo).Error
	})
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

// ToggleFavorite flips the favorite flag. Only the false-to-true transition
// appends an activity entry.
func (s *PhotoStore) ToggleFavorite(id uuid.UUID, actor string) (*models.Photo, error) {
	var photo models.Photo
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&photo, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		photo.IsFavorite = !photo.IsFavorite
		if err := tx.Save(&photo).Error; err != nil {
			return err
		}

		if photo.IsFavorite {
			return appendActivity(tx, models.ActivityItem{
				Kind:       models.ActivityPhotoFavorited,
				UserEmail:  actor,
				PhotoID:    &photo.ID,
				PhotoTitle: photo.Title,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

// DeletePhoto removes the photo and its comments. Shared links referencing
// the photo are left in place; they resolve to not-found afterwards.
// Deleting an id that no longer exists is a silent no-op.
func (s *PhotoStore) DeletePhoto(id uuid.UUID, origin string) error {
	deleted := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var photo models.Photo
		if err := tx.First(&photo, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Where("photo_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&photo).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return err
	}
	if deleted {
		s.notifyChange(origin)
	}
	return nil
}

// AddComment validates and appends a comment to a photo. Replies reference
// a top-level comment on the same photo; a reply cannot be replied to.
func (s *PhotoStore) AddComment(photoID uuid.UUID, text, author string, parentID *uuid.UUID) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, validationError("comment cannot be empty")
	}
	if len(text) > models.MaxCommentLength {
		return nil, validationError(fmt.Sprintf("comment must be at most %d characters", models.MaxCommentLength))
	}
	text = models.SanitizeText(text)

	var comment models.Comment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var photo models.Photo
		if err := tx.First(&photo, "id = ?", photoID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		isReply := parentID != nil
		if isReply {
			var parent models.Comment
			if err := tx.First(&parent, "id = ?", *parentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return validationError("parent comment does not exist")
				}
				return err
			}
			if parent.PhotoID != photoID {
				return validationError("parent comment belongs to a different photo")
			}
			if parent.ParentID != nil {
				return validationError("cannot reply to a reply")
			}
		}

		comment = models.Comment{
			PhotoID:   photoID,
			UserEmail: author,
			Text:      text,
			ParentID:  parentID,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}

		snippet := text
		if runes := []rune(snippet); len(runes) > activitySnippetLen {
			snippet = string(runes[:activitySnippetLen])
		}
		if isReply {
			snippet = "↪ " + snippet
		}
		return appendActivity(tx, models.ActivityItem{
			Kind:        models.ActivityCommentAdded,
			UserEmail:   author,
			PhotoID:     &photo.ID,
			PhotoTitle:  photo.Title,
			CommentText: snippet,
		})
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Comments returns a photo's comments in insertion order
func (s *PhotoStore) Comments(photoID uuid.UUID) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.Where("photo_id = ?", photoID).Order("created_at, id").Find(&comments).Error
	return comments, err
}

// FilterPhotos AND-combines the category, child and album predicates.
// FilterAll for a dimension matches every photo.
func (s *PhotoStore) FilterPhotos(category, child, albumID string) ([]models.Photo, error) {
	query := s.db.Model(&models.Photo{})
	if category != FilterAll {
		query = query.Where("category = ?", category)
	}
	if child != FilterAll {
		query = query.Where("child_name = ?", child)
	}
	if albumID != FilterAll {
		query = query.Where("album_id = ?", albumID)
	}

	var photos []models.Photo
	err := query.Order("created_at, id").Find(&photos).Error
	return photos, err
}

// MonthGroup is a timeline bucket keyed by year-month
type MonthGroup struct {
	Month  string         `json:"month"` // YYYY-MM
	Photos []models.Photo `json:"photos"`
}

// PhotosByMonth groups photos by the year-month prefix of their date,
// newest month first. Ordering within a group is the caller's concern.
func (s *PhotoStore) PhotosByMonth() ([]MonthGroup, error) {
	var photos []models.Photo
	if err := s.db.Order("created_at, id").Find(&photos).Error; err != nil {
		return nil, err
	}

	grouped := make(map[string][]models.Photo)
	var keys []string
	for _, photo := range photos {
		if len(photo.Date) < 7 {
			continue
		}
		key := photo.Date[:7]
		if _, seen := grouped[key]; !seen {
			keys = append(keys, key)
		}
		grouped[key] = append(grouped[key], photo)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	groups := make([]MonthGroup, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, MonthGroup{Month: key, Photos: grouped[key]})
	}
	return groups, nil
}

// Favorites returns all favorited photos in collection order
func (s *PhotoStore) Favorites() ([]models.Photo, error) {
	var photos []models.Photo
	err := s.db.Where("is_favorite = ?", true).Order("created_at, id").Find(&photos).Error
	return photos, err
}

// Children returns the distinct subject names across all photos
func (s *PhotoStore) Children() ([]string, error) {
	var names []string
	err := s.db.Model(&models.Photo{}).Distinct("child_name").Order("child_name").Pluck("child_name", &names).Error
	return names, err
}

// PhotoCount returns the current total number of photos
func (s *PhotoStore) PhotoCount() (int64, error) {
	var count int64
	err := s.db.Model(&models.Photo{}).Count(&count).Error
	return count, err
}

// NewAlbum describes an album about to be created
type NewAlbum struct {
	Name        string
	Description string
	Color       string
	Icon        string
	IsPublic    bool
}

// AddAlbum creates a new album. Unrecognized icon tags fall back to the
// default icon.
func (s *PhotoStore) AddAlbum(entry NewAlbum) (*models.Album, error) {
	name := strings.TrimSpace(entry.Name)
	if name == "" {
		return nil, validationError("album name is required")
	}

	album := models.Album{
		Name:        name,
		Description: strings.TrimSpace(entry.Description),
		Color:       entry.Color,
		Icon:        models.NormalizeIcon(entry.Icon),
		IsPublic:    entry.IsPublic,
	}
	if err := s.db.Create(&album).Error; err != nil {
		return nil, err
	}
	return &album, nil
}

// UpdateAlbum merges the patch into the matching album
func (s *PhotoStore) UpdateAlbum(id uuid.UUID, patch models.AlbumPatch) (*models.Album, error) {
	var album models.Album
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&album, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return validationError("album name is required")
			}
			album.Name = name
		}
		if patch.Description != nil {
			album.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.Color != nil {
			album.Color = *patch.Color
		}
		if patch.Icon != nil {
			album.Icon = models.NormalizeIcon(*patch.Icon)
		}
		if patch.IsPublic != nil {
			album.IsPublic = *patch.IsPublic
		}
		if patch.CoverPhotoID != nil {
			var photo models.Photo
			if err := tx.First(&photo, "id = ?", *patch.CoverPhotoID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return validationError("cover photo does not exist")
				}
				return err
			}
			album.CoverPhotoID = patch.CoverPhotoID
		}

		return tx.Save(&album).Error
	})
	if err != nil {
		return nil, err
	}
	return &album, nil
}

// DeleteAlbum removes the album and detaches its photos. Member photos are
// never cascade-deleted: their album reference is cleared instead.
func (s *PhotoStore) DeleteAlbum(id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var album models.Album
		if err := tx.First(&album, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Model(&models.Photo{}).Where("album_id = ?", id).Update("album_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&album).Error
	})
}

// GetAlbum returns a single album
func (s *PhotoStore) GetAlbum(id uuid.UUID) (*models.Album, error) {
	var album models.Album
	err := s.db.First(&album, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &album, nil
}

// Albums returns all albums in creation order
func (s *PhotoStore) Albums() ([]models.Album, error) {
	var albums []models.Album
	err := s.db.Order("created_at, id").Find(&albums).Error
	return albums, err
}

// AlbumPhotos returns the photos currently referencing the album
func (s *PhotoStore) AlbumPhotos(albumID uuid.UUID) ([]models.Photo, error) {
	var photos []models.Photo
	err := s.db.Where("album_id = ?", albumID).Order("created_at, id").Find(&photos).Error
	return photos, err
}

// Activity returns the newest feed entries, most recent first
func (s *PhotoStore) Activity(limit int) ([]models.ActivityItem, error) {
	if limit <= 0 || limit > activityCap {
		limit = activityCap
	}
	var items []models.ActivityItem
	err := s.db.Order("created_at desc, id desc").Limit(limit).Find(&items).Error
	return items, err
}

// Stats aggregates collection counts for the statistics view
type Stats struct {
	TotalPhotos int64            `json:"total_photos"`
	TotalAlbums int64            `json:"total_albums"`
	Favorites   int64            `json:"favorites"`
	ByCategory  map[string]int64 `json:"by_category"`
	ByChild     map[string]int64 `json:"by_child"`
	ByAlbum     map[string]int64 `json:"by_album"`
}

// GetStats computes aggregate counts across the collection
func (s *PhotoStore) GetStats() (*Stats, error) {
	stats := &Stats{
		ByCategory: make(map[string]int64),
		ByChild:    make(map[string]int64),
		ByAlbum:    make(map[string]int64),
	}

	if err := s.db.Model(&models.Photo{}).Count(&stats.TotalPhotos).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Album{}).Count(&stats.TotalAlbums).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Photo{}).Where("is_favorite = ?", true).Count(&stats.Favorites).Error; err != nil {
		return nil, err
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var byCategory []bucket
	if err := s.db.Model(&models.Photo{}).Select("category as key, count(*) as count").Group("category").Scan(&byCategory).Error; err != nil {
		return nil, err
	}
	for _, b := range byCategory {
		stats.ByCategory[b.Key] = b.Count
	}

	var byChild []bucket
	if err := s.db.Model(&models.Photo{}).Select("child_name as key, count(*) as count").Group("child_name").Scan(&byChild).Error; err != nil {
		return nil, err
	}
	for _, b := range byChild {
		stats.ByChild[b.Key] = b.Count
	}

	var byAlbum []bucket
	if err := s.db.Model(&models.Photo{}).Select("album_id as key, count(*) as count").Where("album_id IS NOT NULL").Group("album_id").Scan(&byAlbum).Error; err != nil {
		return nil, err
	}
	for _, b := range byAlbum {
		stats.ByAlbum[b.Key] = b.Count
	}

	return stats, nil
}

// appendActivity inserts a feed entry and evicts everything beyond the cap
func appendActivity(tx *gorm.DB, item models.ActivityItem) error {
	if err := tx.Create(&item).Error; err != nil {
		return err
	}
	return tx.Exec(
		"DELETE FROM activity_items WHERE id NOT IN (SELECT id FROM activity_items ORDER BY created_at DESC, id DESC LIMIT ?)",
		activityCap,
	).Error
}
