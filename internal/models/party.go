package models

import (
	"time"

	"github.com/google/uuid"
)

// Party statuses
const (
	PartyStatusActive  = "active"
	PartyStatusStopped = "stopped"
)

// Party represents a shared room with a member set, a status and an
// ordered media item queue. Members and Items hold ids only; the queue
// references MediaItem rows, the member set references User rows.
type Party struct {
	ID        uuid.UUID  `json:"id" gorm:"type:text;primaryKey;column:id"`
	Name      string     `json:"name" gorm:"type:text;not null;column:name" validate:"required,min=1,max=255"`
	Owner     uuid.UUID  `json:"owner" gorm:"type:text;not null;column:owner"`
	Status    string     `json:"status" gorm:"type:text;not null;default:'active';column:status"`
	Members   StringList `json:"members" gorm:"type:text;not null;column:members"`
	Items     StringList `json:"items" gorm:"type:text;not null;column:items"`
	CreatedAt time.Time  `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// NewParty creates an active Party owned by owner. The owner is always
// part of the member set.
func NewParty(name string, owner uuid.UUID) *Party {
	now := time.Now().UTC()
	return &Party{
		ID:        uuid.New(),
		Name:      name,
		Owner:     owner,
		Status:    PartyStatusActive,
		Members:   StringList{owner.String()},
		Items:     StringList{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsActive reports whether the party status is active
func (p *Party) IsActive() bool {
	return p.Status == PartyStatusActive
}

// HasMember reports whether the user id is in the member set
func (p *Party) HasMember(userID uuid.UUID) bool {
	return p.Members.Contains(userID.String())
}

// HasItem reports whether the media item id is in the queue
func (p *Party) HasItem(itemID uuid.UUID) bool {
	return p.Items.Contains(itemID.String())
}

// ValidPartyStatus reports whether s is a known party status
func ValidPartyStatus(s string) bool {
	return s == PartyStatusActive || s == PartyStatusStopped
}
