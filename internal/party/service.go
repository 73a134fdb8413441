// Package party implements the party store: room records with a member
// set, a status and an ordered media item queue.
package party

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/floodyboy/sync-party/internal/db"
	"github.com/floodyboy/sync-party/internal/models"
)

const maxNameLength = 255

// Service provides party operations
type Service struct {
	repos *db.Repositories
}

// NewService creates a new party service
func NewService(repos *db.Repositories) *Service {
	return &Service{repos: repos}
}

// Create creates an active party owned by ownerID. The owner always
// enters the member set.
func (s *Service) Create(ctx context.Context, name string, ownerID uuid.UUID) (*models.Party, error) {
	if name == "" || len(name) > maxNameLength {
		return nil, fmt.Errorf("%w: invalid name", ErrValidation)
	}

	party := models.NewParty(name, ownerID)
	if err := s.repos.Parties.Create(ctx, party); err != nil {
		return nil, err
	}
	return party, nil
}

// Get retrieves a party by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Party, error) {
	party, err := s.repos.Parties.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return party, nil
}

// ListForUser retrieves every party the user is a member of
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Party, error) {
	return s.repos.Parties.ListForUser(ctx, userID)
}

// AddItem appends an existing media item to the party queue. The queue
// only ever references existing items, and re-adding a queued id is a
// no-op success.
func (s *Service) AddItem(ctx context.Context, partyID, itemID uuid.UUID) error {
	if _, err := s.repos.MediaItems.GetByID(ctx, itemID); err != nil {
		if db.IsNotFound(err) {
			return ErrUnknownItem
		}
		return err
	}

	if err := s.repos.Parties.AddItem(ctx, partyID, itemID); err != nil {
		if db.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// RemoveItem removes a media item from the party queue
func (s *Service) RemoveItem(ctx context.Context, partyID, itemID uuid.UUID) error {
	if err := s.repos.Parties.RemoveItem(ctx, partyID, itemID); err != nil {
		if db.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// SetStatus updates the party status
func (s *Service) SetStatus(ctx context.Context, partyID uuid.UUID, status string) error {
	if !models.ValidPartyStatus(status) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	if err := s.repos.Parties.SetStatus(ctx, partyID, status); err != nil {
		if db.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Update applies name, status, members and queue from the incoming
// party record onto the stored row. The owner is forced back into the
// member set before the write, so owner membership survives every
// mutation regardless of what the caller sent.
func (s *Service) Update(ctx context.Context, incoming *models.Party) (*models.Party, error) {
	current, err := s.Get(ctx, incoming.ID)
	if err != nil {
		return nil, err
	}

	if incoming.Name == "" || len(incoming.Name) > maxNameLength {
		return nil, fmt.Errorf("%w: invalid name", ErrValidation)
	}
	if !models.ValidPartyStatus(incoming.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, incoming.Status)
	}

	members := incoming.Members
	if members == nil {
		members = models.StringList{}
	}
	if !members.Contains(current.Owner.String()) {
		members = append(members, current.Owner.String())
	}

	items, err := s.resolveQueue(ctx, incoming.Items, current.Items)
	if err != nil {
		return nil, err
	}

	updated := &models.Party{
		ID:      current.ID,
		Name:    incoming.Name,
		Owner:   current.Owner,
		Status:  incoming.Status,
		Members: members,
		Items:   items,
	}

	if err := s.repos.Parties.Update(ctx, updated); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

// resolveQueue keeps only incoming queue entries that reference an
// existing media item row, so the queue never points at unknown items.
// Unknown ids are dropped rather than rejected: a full-state update
// racing an item delete still applies.
func (s *Service) resolveQueue(ctx context.Context, incoming, current models.StringList) (models.StringList, error) {
	if incoming == nil {
		return current, nil
	}

	kept := make(models.StringList, 0, len(incoming))
	for _, raw := range incoming {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		if _, err := s.repos.MediaItems.GetByID(ctx, id); err != nil {
			if db.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		kept = append(kept, raw)
	}
	return kept, nil
}

// Delete removes the party row. Queued items survive in their owners'
// personal libraries.
func (s *Service) Delete(ctx context.Context, partyID uuid.UUID) error {
	if err := s.repos.Parties.Delete(ctx, partyID); err != nil {
		if db.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
