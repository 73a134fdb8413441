package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	Username     string    `json:"username" gorm:"type:text;not null;uniqueIndex;column:username" validate:"required,min=1,max=255"`
	PasswordHash string    `json:"-" gorm:"type:text;not null;column:password_hash"`
	Role         string    `json:"role" gorm:"type:text;not null;default:'user';column:role"`
	CreatedAt    time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// NewUser creates a new User with generated UUID and timestamps
func NewUser(username, passwordHash, role string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Actor is the authenticated identity attached to a single request.
// It is produced by an external resolver and never persisted here.
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Role string    `json:"role"`
}

// IsAdmin reports whether the actor holds the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
