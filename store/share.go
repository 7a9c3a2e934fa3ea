package store

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/St0bbe/remix-of-our-little-pix/models"
)

// shareTokenBytes yields 12 base64url characters, enough entropy for the
// token to serve as a bearer capability
const shareTokenBytes = 9

// SharedContent is the resolved target of a share token. Exactly one of the
// variants is populated, discriminated by Kind:
//
//	SharePhoto: Photo (with comments)
//	ShareAlbum: Album and Photos (the live album members)
type SharedContent struct {
	Kind   models.ShareKind `json:"kind"`
	Photo  *models.Photo    `json:"photo,omitempty"`
	Album  *models.Album    `json:"album,omitempty"`
	Photos []models.Photo   `json:"photos,omitempty"`
}

// CreateShareLink mints a share token for the target, or returns the
// existing one: at most one live link exists per (kind, target) pair.
func (s *PhotoStore) CreateShareLink(kind models.ShareKind, targetID uuid.UUID) (*models.SharedLink, error) {
	if kind != models.SharePhoto && kind != models.ShareAlbum {
		return nil, validationError(fmt.Sprintf("invalid share kind %q", kind))
	}

	// The target must exist at mint time; it may be deleted later, in
	// which case the link resolves to not-found.
	var err error
	if kind == models.SharePhoto {
		err = s.db.First(&models.Photo{}, "id = ?", targetID).Error
	} else {
		err = s.db.First(&models.Album{}, "id = ?", targetID).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var link models.SharedLink
	err = s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("kind = ? AND target_id = ?", kind, targetID).First(&link).Error
		if err == nil {
			return nil // idempotent: reuse the existing token
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		token, err := newShareToken()
		if err != nil {
			return err
		}
		link = models.SharedLink{
			Token:    token,
			Kind:     kind,
			TargetID: targetID,
		}
		return tx.Create(&link).Error
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// ResolveShare looks up a share token and returns the live content it
// points at. An unknown token, or a token whose target was deleted, yields
// (nil, nil) rather than an error: the caller renders a generic
// link-not-found page.
func (s *PhotoStore) ResolveShare(token string) (*SharedContent, error) {
	var link models.SharedLink
	err := s.db.First(&link, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	switch link.Kind {
	case models.SharePhoto:
		photo, err := s.GetPhoto(link.TargetID)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &SharedContent{Kind: models.SharePhoto, Photo: photo}, nil

	case models.ShareAlbum:
		album, err := s.GetAlbum(link.TargetID)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		photos, err := s.AlbumPhotos(album.ID)
		if err != nil {
			return nil, err
		}
		return &SharedContent{Kind: models.ShareAlbum, Album: album, Photos: photos}, nil
	}

	return nil, nil
}

func newShareToken() (string, error) {
	buf := make([]byte, shareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
