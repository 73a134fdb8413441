package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/floodyboy/sync-party/internal/db"
	"github.com/floodyboy/sync-party/internal/models"
)

// ErrBadCredentials is returned for unknown usernames and wrong
// passwords alike.
var ErrBadCredentials = errors.New("bad credentials")

// HashPassword hashes a plaintext password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyCredentials checks username and password against the user
// table and returns the matching user.
func VerifyCredentials(ctx context.Context, users *db.UserRepository, username, password string) (*models.User, error) {
	user, err := users.GetByUsername(ctx, username)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}

	return user, nil
}
