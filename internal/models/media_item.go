package models

import (
	"time"

	"github.com/google/uuid"
)

// MediaItem types
const (
	MediaTypeFile = "file"
	MediaTypeWeb  = "web"
	MediaTypeUser = "user"
)

// MediaItem represents a piece of content with a single owner. For
// file items the URL field holds the on-disk filename token, for web
// and user items it holds the remote URL.
type MediaItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	Type      string    `json:"type" gorm:"type:text;not null;column:type"`
	Owner     uuid.UUID `json:"owner" gorm:"type:text;not null;column:owner"`
	Name      string    `json:"name" gorm:"type:text;not null;column:name" validate:"required,min=1,max=255"`
	URL       string    `json:"url" gorm:"type:text;not null;column:url" validate:"required"`
	CreatedAt time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// NewMediaItem creates a MediaItem with generated UUID and timestamps.
// File uploads pre-assign the id instead, so the physical filename can
// embed it; they construct the struct directly.
func NewMediaItem(itemType string, owner uuid.UUID, name, url string) *MediaItem {
	now := time.Now().UTC()
	return &MediaItem{
		ID:        uuid.New(),
		Type:      itemType,
		Owner:     owner,
		Name:      name,
		URL:       url,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsFile reports whether the item is backed by an uploaded file
func (m *MediaItem) IsFile() bool {
	return m.Type == MediaTypeFile
}

// ValidMediaType reports whether t is a known media item type
func ValidMediaType(t string) bool {
	return t == MediaTypeFile || t == MediaTypeWeb || t == MediaTypeUser
}
