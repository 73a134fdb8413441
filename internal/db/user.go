package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/floodyboy/sync-party/internal/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).Create(user)
	if result.Error != nil {
		return fmt.Errorf("failed to create user: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a user by its UUID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&user)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).Where("username = ?", username).First(&user)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &user, nil
}

// List retrieves all users ordered by username
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	result := r.db.WithContext(ctx).Order("username ASC").Find(&users)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list users: %w", MapGormError(result.Error))
	}
	return users, nil
}
