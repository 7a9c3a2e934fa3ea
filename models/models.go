package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PhotoCategory is the fixed set of categories a photo can belong to
type PhotoCategory string

const (
	CategoryAlone         PhotoCategory = "alone"
	CategoryWithParents   PhotoCategory = "with-parents"
	CategoryWithRelatives PhotoCategory = "with-relatives-or-friends"
)

// Valid reports whether the category is one of the known values
func (c PhotoCategory) Valid() bool {
	switch c {
	case CategoryAlone, CategoryWithParents, CategoryWithRelatives:
		return true
	}
	return false
}

// ActivityKind identifies what a feed entry records
type ActivityKind string

const (
	ActivityPhotoAdded     ActivityKind = "photo-added"
	ActivityCommentAdded   ActivityKind = "comment-added"
	ActivityPhotoFavorited ActivityKind = "photo-favorited"
)

// ShareKind identifies what a shared link points at
type ShareKind string

const (
	SharePhoto ShareKind = "photo"
	ShareAlbum ShareKind = "album"
)

// Photo represents a single image plus its metadata
type Photo struct {
	ID            uuid.UUID     `json:"id" gorm:"type:char(36);primaryKey"`
	FilePath      string        `json:"file_path" gorm:"not null"`
	ThumbnailPath string        `json:"thumbnail_path"`
	MimeType      string        `json:"mime_type"`
	FileSize      int64         `json:"file_size"`
	Width         int           `json:"width"`
	Height        int           `json:"height"`
	Date          string        `json:"date" gorm:"type:char(10);not null;index"` // YYYY-MM-DD
	Category      PhotoCategory `json:"category" gorm:"not null;index"`
	ChildName     string        `json:"child_name" gorm:"not null;index"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	AlbumID       *uuid.UUID    `json:"album_id" gorm:"type:char(36);index"`
	IsFavorite    bool          `json:"is_favorite" gorm:"default:false"`
	UploadedBy    string        `json:"uploaded_by"`
	Comments      []Comment     `json:"comments,omitempty" gorm:"foreignKey:PhotoID"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Album represents a user-defined named grouping of photos
type Album struct {
	ID           uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Name         string     `json:"name" gorm:"not null"`
	Description  string     `json:"description"`
	Color        string     `json:"color"` // Display attribute, opaque to business logic
	Icon         string     `json:"icon"`
	IsPublic     bool       `json:"is_public" gorm:"default:false"`
	CoverPhotoID *uuid.UUID `json:"cover_photo_id" gorm:"type:char(36)"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Comment belongs to exactly one photo. A reply references a top-level
// comment through ParentID; replies cannot themselves be replied to.
type Comment struct {
	ID        uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	PhotoID   uuid.UUID  `json:"photo_id" gorm:"type:char(36);not null;index"`
	UserEmail string     `json:"user_email" gorm:"not null"`
	Text      string     `json:"text" gorm:"not null"`
	ParentID  *uuid.UUID `json:"parent_id" gorm:"type:char(36);index"`
	CreatedAt time.Time  `json:"created_at"`
}

// SharedLink grants unauthenticated read access to one photo or album.
// The token is the primary key and doubles as the bearer capability.
type SharedLink struct {
	Token     string    `json:"token" gorm:"primaryKey"`
	Kind      ShareKind `json:"kind" gorm:"not null;uniqueIndex:idx_shared_target,priority:1"`
	TargetID  uuid.UUID `json:"target_id" gorm:"type:char(36);not null;uniqueIndex:idx_shared_target,priority:2"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityItem is an append-only feed entry recording a notable mutation
type ActivityItem struct {
	ID          uuid.UUID    `json:"id" gorm:"type:char(36);primaryKey"`
	Kind        ActivityKind `json:"kind" gorm:"not null"`
	UserEmail   string       `json:"user_email"`
	PhotoID     *uuid.UUID   `json:"photo_id" gorm:"type:char(36)"`
	PhotoTitle  string       `json:"photo_title"`
	CommentText string       `json:"comment_text"`
	CreatedAt   time.Time    `json:"created_at" gorm:"index"`
}

// Credential maps an allow-listed identity to its password hash.
// Absence of a row for an allowed identity means first login.
type Credential struct {
	Email        string    `json:"email" gorm:"primaryKey"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PhotoPatch carries the mutable photo attributes for a partial update.
// Nil fields are left untouched; ClearAlbum detaches the photo when no
// replacement album is given.
type PhotoPatch struct {
	Date        *string        `json:"date,omitempty"`
	Category    *PhotoCategory `json:"category,omitempty"`
	ChildName   *string        `json:"child_name,omitempty"`
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	AlbumID     *uuid.UUID     `json:"album_id,omitempty"`
	ClearAlbum  bool           `json:"clear_album,omitempty"`
}

// AlbumPatch carries the mutable album attributes for a partial update
type AlbumPatch struct {
	Name         *string    `json:"name,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Color        *string    `json:"color,omitempty"`
	Icon         *string    `json:"icon,omitempty"`
	IsPublic     *bool      `json:"is_public,omitempty"`
	CoverPhotoID *uuid.UUID `json:"cover_photo_id,omitempty"`
}

// DefaultAlbumIcon is used when an unrecognized icon tag is supplied
const DefaultAlbumIcon = "heart"

var albumIcons = map[string]bool{
	"cake":           true,
	"gift":           true,
	"plane":          true,
	"baby":           true,
	"graduation-cap": true,
	"heart":          true,
	"star":           true,
	"camera":         true,
}

// NormalizeIcon maps unrecognized icon tags to the default
func NormalizeIcon(icon string) string {
	if albumIcons[icon] {
		return icon
	}
	return DefaultAlbumIcon
}

// DefaultAlbums is the fixed set seeded on first run
func DefaultAlbums() []Album {
	return []Album{
		{Name: "Birthdays", Color: "hsl(350, 60%, 65%)", Icon: "cake"},
		{Name: "Christmas", Color: "hsl(0, 70%, 45%)", Icon: "gift"},
		{Name: "Travel", Color: "hsl(200, 70%, 50%)", Icon: "plane"},
		{Name: "First Moments", Color: "hsl(280, 60%, 60%)", Icon: "baby"},
		{Name: "School", Color: "hsl(45, 80%, 50%)", Icon: "graduation-cap"},
	}
}

// BeforeCreate hooks to generate UUIDs before creating records

func (p *Photo) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

func (a *Album) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

func (a *ActivityItem) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
