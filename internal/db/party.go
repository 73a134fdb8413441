package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/floodyboy/sync-party/internal/models"
)

// PartyRepository handles database operations for parties. Every
// mutation is a read-modify-write on a single party row, run inside a
// transaction so racing writers resolve last-write-wins at row
// granularity.
type PartyRepository struct {
	db *DB
}

// NewPartyRepository creates a new party repository
func NewPartyRepository(db *DB) *PartyRepository {
	return &PartyRepository{db: db}
}

// Create inserts a new party
func (r *PartyRepository) Create(ctx context.Context, party *models.Party) error {
	result := r.db.WithContext(ctx).Create(party)
	if result.Error != nil {
		return fmt.Errorf("failed to create party: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a party by its UUID
func (r *PartyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Party, error) {
	var party models.Party
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&party)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &party, nil
}

// ListForUser retrieves all parties whose member set contains userID.
// Members is a JSON list of uuid strings, so a quoted-id match is exact.
func (r *PartyRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Party, error) {
	var parties []*models.Party
	pattern := fmt.Sprintf(`%%"%s"%%`, userID.String())
	result := r.db.WithContext(ctx).
		Where("members LIKE ?", pattern).
		Order("created_at ASC").
		Find(&parties)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list parties for user: %w", MapGormError(result.Error))
	}
	return parties, nil
}

// AddItem appends a media item id to the party queue. Adding an id
// that is already queued is a no-op success, never an error.
func (r *PartyRepository) AddItem(ctx context.Context, partyID, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return AddItemTx(tx, partyID, itemID)
	})
}

// AddItemTx is the transactional body of AddItem, exposed so the upload
// pipeline can run item insert and queue append as one unit.
func AddItemTx(tx *gorm.DB, partyID, itemID uuid.UUID) error {
	var party models.Party
	if err := tx.Where("id = ?", partyID.String()).First(&party).Error; err != nil {
		return MapGormError(err)
	}

	if party.Items.Contains(itemID.String()) {
		return nil
	}

	party.Items = append(party.Items, itemID.String())
	if err := tx.Model(&models.Party{}).Where("id = ?", partyID.String()).
		Update("items", party.Items).Error; err != nil {
		return fmt.Errorf("failed to append item to party: %w", MapGormError(err))
	}
	return nil
}

// RemoveItem removes a media item id from the party queue
func (r *PartyRepository) RemoveItem(ctx context.Context, partyID, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var party models.Party
		if err := tx.Where("id = ?", partyID.String()).First(&party).Error; err != nil {
			return MapGormError(err)
		}

		if err := tx.Model(&models.Party{}).Where("id = ?", partyID.String()).
			Update("items", party.Items.Without(itemID.String())).Error; err != nil {
			return fmt.Errorf("failed to remove item from party: %w", MapGormError(err))
		}
		return nil
	})
}

// SetStatus updates the party status
func (r *PartyRepository) SetStatus(ctx context.Context, partyID uuid.UUID, status string) error {
	result := r.db.WithContext(ctx).Model(&models.Party{}).
		Where("id = ?", partyID.String()).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to set party status: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceMembers overwrites the party member set. Callers must
// guarantee the owner stays in memberIDs; the repository does not
// re-derive this.
func (r *PartyRepository) ReplaceMembers(ctx context.Context, partyID uuid.UUID, memberIDs models.StringList) error {
	result := r.db.WithContext(ctx).Model(&models.Party{}).
		Where("id = ?", partyID.String()).
		Update("members", memberIDs)
	if result.Error != nil {
		return fmt.Errorf("failed to replace party members: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveItemEverywhere strips a media item id from every party queue
// referencing it and returns the ids of the affected parties. Keeps
// queues pointing only at existing items when an item row is deleted.
func (r *PartyRepository) RemoveItemEverywhere(ctx context.Context, itemID uuid.UUID) ([]uuid.UUID, error) {
	var affected []uuid.UUID

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parties []*models.Party
		pattern := fmt.Sprintf(`%%"%s"%%`, itemID.String())
		if err := tx.Where("items LIKE ?", pattern).Find(&parties).Error; err != nil {
			return MapGormError(err)
		}

		for _, p := range parties {
			if !p.Items.Contains(itemID.String()) {
				continue
			}
			if err := tx.Model(&models.Party{}).Where("id = ?", p.ID.String()).
				Update("items", p.Items.Without(itemID.String())).Error; err != nil {
				return fmt.Errorf("failed to strip item from party queue: %w", MapGormError(err))
			}
			affected = append(affected, p.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return affected, nil
}

// Update overwrites name, status and members in one row write
func (r *PartyRepository) Update(ctx context.Context, party *models.Party) error {
	updates := map[string]interface{}{
		"name":    party.Name,
		"status":  party.Status,
		"members": party.Members,
		"items":   party.Items,
	}

	result := r.db.WithContext(ctx).Model(&models.Party{}).
		Where("id = ?", party.ID.String()).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update party: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a party by its UUID
func (r *PartyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&models.Party{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete party: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
