package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floodyboy/sync-party/internal/models"
)

// setupTestDB creates a temporary test database with migrations applied
func setupTestDB(t *testing.T) (*DB, *Repositories, func()) {
	t.Helper()

	database, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)
	err = RunMigrations(sqlDB, "file://../../migrations")
	require.NoError(t, err)

	repos := NewRepositories(database)

	cleanup := func() {
		_ = database.Close()
	}

	return database, repos, cleanup
}

func createTestParty(t *testing.T, repos *Repositories, owner uuid.UUID) *models.Party {
	t.Helper()

	party := models.NewParty("Test Party", owner)
	err := repos.Parties.Create(context.Background(), party)
	require.NoError(t, err)
	return party
}

func createTestItem(t *testing.T, repos *Repositories, owner uuid.UUID) *models.MediaItem {
	t.Helper()

	item := models.NewMediaItem(models.MediaTypeWeb, owner, "Test Item", "https://example.com/video")
	err := repos.MediaItems.Create(context.Background(), item)
	require.NoError(t, err)
	return item
}

func TestPartyRepository_CreateAndGet(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	owner := uuid.New()
	party := createTestParty(t, repos, owner)

	got, err := repos.Parties.GetByID(context.Background(), party.ID)
	require.NoError(t, err)
	assert.Equal(t, party.ID, got.ID)
	assert.Equal(t, owner, got.Owner)
	assert.Equal(t, models.PartyStatusActive, got.Status)
	assert.True(t, got.HasMember(owner))
}

func TestPartyRepository_GetByID_NotFound(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repos.Parties.GetByID(context.Background(), uuid.New())
	assert.True(t, IsNotFound(err))
}

func TestPartyRepository_ListForUser(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	owner := uuid.New()
	member := uuid.New()
	outsider := uuid.New()

	party := createTestParty(t, repos, owner)
	err := repos.Parties.ReplaceMembers(ctx, party.ID, models.StringList{owner.String(), member.String()})
	require.NoError(t, err)

	// A party the member has nothing to do with
	createTestParty(t, repos, outsider)

	forMember, err := repos.Parties.ListForUser(ctx, member)
	require.NoError(t, err)
	require.Len(t, forMember, 1)
	assert.Equal(t, party.ID, forMember[0].ID)

	forOutsider, err := repos.Parties.ListForUser(ctx, outsider)
	require.NoError(t, err)
	assert.Len(t, forOutsider, 1)

	forStranger, err := repos.Parties.ListForUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, forStranger)
}

func TestPartyRepository_AddItem(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	owner := uuid.New()
	party := createTestParty(t, repos, owner)
	item := createTestItem(t, repos, owner)

	err := repos.Parties.AddItem(ctx, party.ID, item.ID)
	require.NoError(t, err)

	got, err := repos.Parties.GetByID(ctx, party.ID)
	require.NoError(t, err)
	assert.True(t, got.HasItem(item.ID))
}

func TestPartyRepository_AddItem_DuplicateIsNoop(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	owner := uuid.New()
	party := createTestParty(t, repos, owner)
	item := createTestItem(t, repos, owner)

	require.NoError(t, repos.Parties.AddItem(ctx, party.ID, item.ID))
	require.NoError(t, repos.Parties.AddItem(ctx, party.ID, item.ID))

	got, err := repos.Parties.GetByID(ctx, party.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringList{item.ID.String()}, got.Items)
}

func TestPartyRepository_AddItem_PartyMissing(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	err := repos.Parties.AddItem(context.Background(), uuid.New(), uuid.New())
	assert.True(t, IsNotFound(err))
}

func TestPartyRepository_RemoveItem(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	owner := uuid.New()
	party := createTestParty(t, repos, owner)
	item := createTestItem(t, repos, owner)
	other := createTestItem(t, repos, owner)

	require.NoError(t, repos.Parties.AddItem(ctx, party.ID, item.ID))
	require.NoError(t, repos.Parties.AddItem(ctx, party.ID, other.ID))

	require.NoError(t, repos.Parties.RemoveItem(ctx, party.ID, item.ID))

	got, err := repos.Parties.GetByID(ctx, party.ID)
	require.NoError(t, err)
	assert.False(t, got.HasItem(item.ID))
	assert.True(t, got.HasItem(other.ID))
}

func TestPartyRepository_RemoveItemEverywhere(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	owner := uuid.New()
	first := createTestParty(t, repos, owner)
	second := createTestParty(t, repos, owner)
	untouched := createTestParty(t, repos, owner)
	item := createTestItem(t, repos, owner)

	require.NoError(t, repos.Parties.AddItem(ctx, first.ID, item.ID))
	require.NoError(t, repos.Parties.AddItem(ctx, second.ID, item.ID))

	affected, err := repos.Parties.RemoveItemEverywhere(ctx, item.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, affected)

	for _, partyID := range []uuid.UUID{first.ID, second.ID, untouched.ID} {
		got, err := repos.Parties.GetByID(ctx, partyID)
		require.NoError(t, err)
		assert.False(t, got.HasItem(item.ID))
	}
}

func TestPartyRepository_SetStatus(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	party := createTestParty(t, repos, uuid.New())

	require.NoError(t, repos.Parties.SetStatus(ctx, party.ID, models.PartyStatusStopped))

	got, err := repos.Parties.GetByID(ctx, party.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PartyStatusStopped, got.Status)
}

func TestPartyRepository_SetStatus_NotFound(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	err := repos.Parties.SetStatus(context.Background(), uuid.New(), models.PartyStatusStopped)
	assert.True(t, IsNotFound(err))
}

func TestPartyRepository_ReplaceMembers(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	owner := uuid.New()
	member := uuid.New()
	party := createTestParty(t, repos, owner)

	members := models.StringList{owner.String(), member.String()}
	require.NoError(t, repos.Parties.ReplaceMembers(ctx, party.ID, members))

	got, err := repos.Parties.GetByID(ctx, party.ID)
	require.NoError(t, err)
	assert.Equal(t, members, got.Members)
}

func TestPartyRepository_Delete(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	party := createTestParty(t, repos, uuid.New())

	require.NoError(t, repos.Parties.Delete(ctx, party.ID))

	_, err := repos.Parties.GetByID(ctx, party.ID)
	assert.True(t, IsNotFound(err))

	err = repos.Parties.Delete(ctx, party.ID)
	assert.True(t, IsNotFound(err))
}
