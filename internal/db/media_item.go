package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/floodyboy/sync-party/internal/models"
)

// MediaItemRepository handles database operations for media items
type MediaItemRepository struct {
	db *DB
}

// NewMediaItemRepository creates a new media item repository
func NewMediaItemRepository(db *DB) *MediaItemRepository {
	return &MediaItemRepository{db: db}
}

// Create inserts a new media item
func (r *MediaItemRepository) Create(ctx context.Context, item *models.MediaItem) error {
	result := r.db.WithContext(ctx).Create(item)
	if result.Error != nil {
		return fmt.Errorf("failed to create media item: %w", MapGormError(result.Error))
	}
	return nil
}

// CreateTx inserts a new media item inside an existing transaction
func CreateTx(tx *gorm.DB, item *models.MediaItem) error {
	if err := tx.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create media item: %w", MapGormError(err))
	}
	return nil
}

// GetByID retrieves a media item by its UUID
func (r *MediaItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MediaItem, error) {
	var item models.MediaItem
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&item)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &item, nil
}

// List retrieves all media items, newest first
func (r *MediaItemRepository) List(ctx context.Context) ([]*models.MediaItem, error) {
	var items []*models.MediaItem
	result := r.db.WithContext(ctx).Order("created_at DESC").Find(&items)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list media items: %w", MapGormError(result.Error))
	}
	return items, nil
}

// ListForOwner retrieves all media items owned by ownerID, newest first
func (r *MediaItemRepository) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.MediaItem, error) {
	var items []*models.MediaItem
	result := r.db.WithContext(ctx).
		Where("owner = ?", ownerID.String()).
		Order("created_at DESC").
		Find(&items)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list media items for owner: %w", MapGormError(result.Error))
	}
	return items, nil
}

// UpdateName updates the item name and bumps updated_at
func (r *MediaItemRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	result := r.db.WithContext(ctx).Model(&models.MediaItem{}).
		Where("id = ?", id.String()).
		Updates(map[string]interface{}{
			"name":       name,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update media item: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a media item by its UUID
func (r *MediaItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&models.MediaItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete media item: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
