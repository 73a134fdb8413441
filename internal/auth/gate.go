// Package auth decides whether an actor may read or mutate parties,
// media items and their backing files.
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/floodyboy/sync-party/internal/db"
	"github.com/floodyboy/sync-party/internal/models"
)

// ErrNoFileAccess is the uniform file access denial. Wrong party,
// missing item, stopped party and non-membership all collapse into it
// so callers cannot probe which condition failed.
var ErrNoFileAccess = errors.New("no file access")

// ErrNotAuthorized is returned when an actor fails a mutation or
// queue-append check.
var ErrNotAuthorized = errors.New("not authorized")

// Gate evaluates authorization rules against a point-in-time read of
// the stored state.
type Gate struct {
	repos *db.Repositories
}

// NewGate creates a new authorization gate
func NewGate(repos *db.Repositories) *Gate {
	return &Gate{repos: repos}
}

// CanAccessFile reports whether the actor may fetch the given media
// item through the given party. Access requires that the party exists,
// the item is in the party queue, the actor is a member, and the party
// is active unless the actor is an admin. Every failure yields
// ErrNoFileAccess.
func (g *Gate) CanAccessFile(ctx context.Context, actor models.Actor, mediaItemID, partyID uuid.UUID) error {
	party, err := g.repos.Parties.GetByID(ctx, partyID)
	if err != nil {
		if db.IsNotFound(err) {
			return ErrNoFileAccess
		}
		return err
	}

	if !party.IsActive() && !actor.IsAdmin() {
		return ErrNoFileAccess
	}
	if !party.HasMember(actor.ID) {
		return ErrNoFileAccess
	}
	if !party.HasItem(mediaItemID) {
		return ErrNoFileAccess
	}

	return nil
}

// CanAppendToParty reports whether the actor may append items to the
// party queue. The actor must be a member, and the party active unless
// the actor is an admin. A missing party surfaces as the repository's
// not-found error so callers can tell it apart from a denial.
func (g *Gate) CanAppendToParty(ctx context.Context, actor models.Actor, partyID uuid.UUID) error {
	party, err := g.repos.Parties.GetByID(ctx, partyID)
	if err != nil {
		return err
	}

	if !party.HasMember(actor.ID) {
		return ErrNotAuthorized
	}
	if !party.IsActive() && !actor.IsAdmin() {
		return ErrNotAuthorized
	}

	return nil
}

// CanMutateItem reports whether the actor may edit or delete the item
func (g *Gate) CanMutateItem(actor models.Actor, item *models.MediaItem) bool {
	return item.Owner == actor.ID || actor.IsAdmin()
}

// CanMutateParty reports whether the actor may change status,
// membership or existence of the party
func (g *Gate) CanMutateParty(actor models.Actor, party *models.Party) bool {
	return party.Owner == actor.ID || actor.IsAdmin()
}
