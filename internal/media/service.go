// Package media implements the media item store: validated CRUD over
// item rows plus lifetime management of the files backing file-type
// items.
package media

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/floodyboy/sync-party/internal/db"
	"github.com/floodyboy/sync-party/internal/logger"
	"github.com/floodyboy/sync-party/internal/models"
)

const maxNameLength = 255

// Service provides media item operations
type Service struct {
	repos     *db.Repositories
	uploadDir string
}

// NewService creates a new media service. uploadDir is the root every
// file-type item's url token resolves under.
func NewService(repos *db.Repositories, uploadDir string) *Service {
	return &Service{repos: repos, uploadDir: uploadDir}
}

// Validate checks the item shape for its type. File items must carry a
// pre-assigned id because the physical filename embeds it.
func Validate(item *models.MediaItem) error {
	if !models.ValidMediaType(item.Type) {
		return fmt.Errorf("%w: unknown type %q", ErrValidation, item.Type)
	}
	if item.Owner == uuid.Nil {
		return fmt.Errorf("%w: missing owner", ErrValidation)
	}
	if item.Name == "" || len(item.Name) > maxNameLength {
		return fmt.Errorf("%w: invalid name", ErrValidation)
	}
	if item.URL == "" {
		return fmt.Errorf("%w: missing url", ErrValidation)
	}

	switch item.Type {
	case models.MediaTypeWeb, models.MediaTypeUser:
		u, err := url.Parse(item.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: invalid web url", ErrValidation)
		}
	case models.MediaTypeFile:
		if item.ID == uuid.Nil {
			return fmt.Errorf("%w: file item requires a pre-assigned id", ErrValidation)
		}
		if strings.Contains(item.URL, "/") || strings.Contains(item.URL, "\\") {
			return fmt.Errorf("%w: file url must be a bare filename token", ErrValidation)
		}
	}

	return nil
}

// Create validates and inserts a new item. The id is assigned here
// unless the caller pre-supplied one.
func (s *Service) Create(ctx context.Context, item *models.MediaItem) (*models.MediaItem, error) {
	if item.ID == uuid.Nil && item.Type != models.MediaTypeFile {
		item.ID = uuid.New()
	}

	if err := Validate(item); err != nil {
		return nil, err
	}

	if err := s.repos.MediaItems.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Get retrieves an item by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.MediaItem, error) {
	item, err := s.repos.MediaItems.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

// ListAll retrieves every item; callers gate this to admins
func (s *Service) ListAll(ctx context.Context) ([]*models.MediaItem, error) {
	return s.repos.MediaItems.List(ctx)
}

// ListForOwner retrieves the owner's personal library
func (s *Service) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.MediaItem, error) {
	return s.repos.MediaItems.ListForOwner(ctx, ownerID)
}

// UpdateName renames an item after re-validating the patched record
func (s *Service) UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.MediaItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Name = name
	if err := Validate(item); err != nil {
		return nil, err
	}

	if err := s.repos.MediaItems.UpdateName(ctx, id, name); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Re-read so the returned record carries the bumped updated_at
	return s.Get(ctx, id)
}

// Delete removes the row and, for file items, the backing file as one
// logical unit. The row is authoritative: a file that is already gone
// is tolerated and the row delete proceeds; any other filesystem error
// aborts before the row is touched. The id is then stripped from every
// party queue so queues keep referencing only existing items; the
// affected party ids come back for change notification.
func (s *Service) Delete(ctx context.Context, item *models.MediaItem) ([]uuid.UUID, error) {
	if item.IsFile() {
		path := s.FilePath(item)
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				logger.Log.Warn().
					Str("id", item.ID.String()).
					Str("path", path).
					Msg("Backing file already absent, deleting row anyway")
			} else {
				logger.Log.Error().
					Err(err).
					Str("id", item.ID.String()).
					Str("path", path).
					Msg("Failed to delete backing file")
				return nil, fmt.Errorf("%w: %v", ErrFileSystem, err)
			}
		}
	}

	if err := s.repos.MediaItems.Delete(ctx, item.ID); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	affected, err := s.repos.Parties.RemoveItemEverywhere(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	return affected, nil
}

// FilePath resolves a file item's on-disk location from the stored url
// token. The path always derives from the row, never from parsing the
// request.
func (s *Service) FilePath(item *models.MediaItem) string {
	return filepath.Join(s.uploadDir, item.URL)
}

// DownloadName returns the human-facing filename for a file item: the
// stored token with the row's own id prefix stripped.
func DownloadName(item *models.MediaItem) string {
	return strings.TrimPrefix(item.URL, item.ID.String()+"-")
}
