package auth

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floodyboy/sync-party/internal/db"
	"github.com/floodyboy/sync-party/internal/models"
)

func setupGateTest(t *testing.T) (*Gate, *db.Repositories, func()) {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)
	err = db.RunMigrations(sqlDB, "file://../../migrations")
	require.NoError(t, err)

	repos := db.NewRepositories(database)

	cleanup := func() {
		_ = database.Close()
	}

	return NewGate(repos), repos, cleanup
}

func seedParty(t *testing.T, repos *db.Repositories, owner uuid.UUID, status string, members []uuid.UUID, items []uuid.UUID) *models.Party {
	t.Helper()

	party := models.NewParty("movie night", owner)
	party.Status = status
	for _, m := range members {
		if !party.Members.Contains(m.String()) {
			party.Members = append(party.Members, m.String())
		}
	}
	for _, i := range items {
		party.Items = append(party.Items, i.String())
	}

	require.NoError(t, repos.Parties.Create(context.Background(), party))
	return party
}

func TestGate_CanAccessFile_Member(t *testing.T) {
	gate, repos, cleanup := setupGateTest(t)
	defer cleanup()

	owner := uuid.New()
	member := uuid.New()
	itemID := uuid.New()
	party := seedParty(t, repos, owner, models.PartyStatusActive, []uuid.UUID{member}, []uuid.UUID{itemID})

	actor := models.Actor{ID: member, Role: models.RoleUser}
	err := gate.CanAccessFile(context.Background(), actor, itemID, party.ID)
	assert.NoError(t, err)
}

// Denial must look the same no matter which condition failed, so a
// caller cannot distinguish "wrong party" from "not a member" from
// "item not queued".
func TestGate_CanAccessFile_UniformDenial(t *testing.T) {
	gate, repos, cleanup := setupGateTest(t)
	defer cleanup()

	owner := uuid.New()
	member := uuid.New()
	outsider := uuid.New()
	itemID := uuid.New()
	otherItemID := uuid.New()

	active := seedParty(t, repos, owner, models.PartyStatusActive, []uuid.UUID{member}, []uuid.UUID{itemID})
	stopped := seedParty(t, repos, owner, models.PartyStatusStopped, []uuid.UUID{member}, []uuid.UUID{itemID})

	ctx := context.Background()

	cases := []struct {
		name    string
		actor   models.Actor
		itemID  uuid.UUID
		partyID uuid.UUID
	}{
		{
			name:    "non-member of active party",
			actor:   models.Actor{ID: outsider, Role: models.RoleUser},
			itemID:  itemID,
			partyID: active.ID,
		},
		{
			name:    "member of stopped party",
			actor:   models.Actor{ID: member, Role: models.RoleUser},
			itemID:  itemID,
			partyID: stopped.ID,
		},
		{
			name:    "item not in party queue",
			actor:   models.Actor{ID: member, Role: models.RoleUser},
			itemID:  otherItemID,
			partyID: active.ID,
		},
		{
			name:    "party does not exist",
			actor:   models.Actor{ID: member, Role: models.RoleUser},
			itemID:  itemID,
			partyID: uuid.New(),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := gate.CanAccessFile(ctx, tc.actor, tc.itemID, tc.partyID)
			assert.ErrorIs(t, err, ErrNoFileAccess)
		})
	}
}

func TestGate_CanAccessFile_AdminBypassesStatus(t *testing.T) {
	gate, repos, cleanup := setupGateTest(t)
	defer cleanup()

	owner := uuid.New()
	admin := uuid.New()
	itemID := uuid.New()
	stopped := seedParty(t, repos, owner, models.PartyStatusStopped, []uuid.UUID{admin}, []uuid.UUID{itemID})

	actor := models.Actor{ID: admin, Role: models.RoleAdmin}
	err := gate.CanAccessFile(context.Background(), actor, itemID, stopped.ID)
	assert.NoError(t, err)
}

func TestGate_CanAccessFile_AdminStillNeedsMembership(t *testing.T) {
	gate, repos, cleanup := setupGateTest(t)
	defer cleanup()

	owner := uuid.New()
	itemID := uuid.New()
	party := seedParty(t, repos, owner, models.PartyStatusActive, nil, []uuid.UUID{itemID})

	actor := models.Actor{ID: uuid.New(), Role: models.RoleAdmin}
	err := gate.CanAccessFile(context.Background(), actor, itemID, party.ID)
	assert.ErrorIs(t, err, ErrNoFileAccess)
}

func TestGate_CanAppendToParty(t *testing.T) {
	gate, repos, cleanup := setupGateTest(t)
	defer cleanup()

	owner := uuid.New()
	member := uuid.New()
	admin := uuid.New()
	ctx := context.Background()

	active := seedParty(t, repos, owner, models.PartyStatusActive, []uuid.UUID{member, admin}, nil)
	stopped := seedParty(t, repos, owner, models.PartyStatusStopped, []uuid.UUID{member, admin}, nil)

	t.Run("member of active party", func(t *testing.T) {
		actor := models.Actor{ID: member, Role: models.RoleUser}
		assert.NoError(t, gate.CanAppendToParty(ctx, actor, active.ID))
	})

	t.Run("non-member of active party", func(t *testing.T) {
		actor := models.Actor{ID: uuid.New(), Role: models.RoleUser}
		assert.ErrorIs(t, gate.CanAppendToParty(ctx, actor, active.ID), ErrNotAuthorized)
	})

	t.Run("member of stopped party", func(t *testing.T) {
		actor := models.Actor{ID: member, Role: models.RoleUser}
		assert.ErrorIs(t, gate.CanAppendToParty(ctx, actor, stopped.ID), ErrNotAuthorized)
	})

	t.Run("admin member of stopped party", func(t *testing.T) {
		actor := models.Actor{ID: admin, Role: models.RoleAdmin}
		assert.NoError(t, gate.CanAppendToParty(ctx, actor, stopped.ID))
	})

	t.Run("admin non-member", func(t *testing.T) {
		actor := models.Actor{ID: uuid.New(), Role: models.RoleAdmin}
		assert.ErrorIs(t, gate.CanAppendToParty(ctx, actor, active.ID), ErrNotAuthorized)
	})

	t.Run("missing party is not a denial", func(t *testing.T) {
		actor := models.Actor{ID: member, Role: models.RoleUser}
		err := gate.CanAppendToParty(ctx, actor, uuid.New())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotAuthorized)
		assert.True(t, db.IsNotFound(err))
	})
}

func TestGate_CanMutateItem(t *testing.T) {
	gate := NewGate(nil)

	owner := uuid.New()
	item := &models.MediaItem{ID: uuid.New(), Owner: owner}

	assert.True(t, gate.CanMutateItem(models.Actor{ID: owner, Role: models.RoleUser}, item))
	assert.False(t, gate.CanMutateItem(models.Actor{ID: uuid.New(), Role: models.RoleUser}, item))
	assert.True(t, gate.CanMutateItem(models.Actor{ID: uuid.New(), Role: models.RoleAdmin}, item))
}

func TestGate_CanMutateParty(t *testing.T) {
	gate := NewGate(nil)

	owner := uuid.New()
	party := &models.Party{ID: uuid.New(), Owner: owner}

	assert.True(t, gate.CanMutateParty(models.Actor{ID: owner, Role: models.RoleUser}, party))
	assert.False(t, gate.CanMutateParty(models.Actor{ID: uuid.New(), Role: models.RoleUser}, party))
	assert.True(t, gate.CanMutateParty(models.Actor{ID: uuid.New(), Role: models.RoleAdmin}, party))
}
