package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floodyboy/sync-party/internal/models"
)

func newWebItemBody(name, url, partyID string) NewMediaItemRequest {
	var req NewMediaItemRequest
	req.MediaItem.Type = models.MediaTypeWeb
	req.MediaItem.Name = name
	req.MediaItem.URL = url
	req.PartyID = partyID
	return req
}

func TestMediaRoutes_Create(t *testing.T) {
	env := setupTestEnv(t)
	actor, token := env.newActor(t, "alice", models.RoleUser)

	t.Run("web item lands in the owner's library", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/mediaItem", token, newWebItemBody("clip", "https://example.com/v", ""))
		require.Equal(t, http.StatusOK, w.Code)

		body := envelope(t, w)
		assert.Equal(t, MsgMediaItemAddSuccessful, body["msg"])

		raw, ok := body["mediaItem"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, actor.ID.String(), raw["owner"])

		w = env.do(t, http.MethodGet, "/api/userItems", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, envelope(t, w)["userItems"], 1)
	})

	t.Run("file type is rejected here", func(t *testing.T) {
		var req NewMediaItemRequest
		req.MediaItem.Type = models.MediaTypeFile
		req.MediaItem.Name = "song.mp3"
		req.MediaItem.URL = "song.mp3"

		w := env.do(t, http.MethodPost, "/api/mediaItem", token, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid url is rejected", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/mediaItem", token, newWebItemBody("clip", "not a url", ""))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMediaRoutes_CreateIntoParty(t *testing.T) {
	env := setupTestEnv(t)
	_, ownerToken := env.newActor(t, "alice", models.RoleUser)
	_, outsiderToken := env.newActor(t, "mallory", models.RoleUser)

	party := createPartyViaAPI(t, env, ownerToken, "movie night")

	t.Run("member append goes into the queue", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/mediaItem", ownerToken, newWebItemBody("clip", "https://example.com/v", party.ID.String()))
		require.Equal(t, http.StatusOK, w.Code)

		got, err := env.repos.Parties.GetByID(context.Background(), party.ID)
		require.NoError(t, err)
		assert.Len(t, got.Items, 1)
	})

	t.Run("non-member append is rejected, item survives in library", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/mediaItem", outsiderToken, newWebItemBody("mine", "https://example.com/m", party.ID.String()))
		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, MsgNotAuthorized, envelope(t, w)["msg"])

		// the queue is untouched but the item was still created
		got, err := env.repos.Parties.GetByID(context.Background(), party.ID)
		require.NoError(t, err)
		assert.Len(t, got.Items, 1)

		w = env.do(t, http.MethodGet, "/api/userItems", outsiderToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, envelope(t, w)["userItems"], 1)
	})
}

func TestMediaRoutes_AddToParty(t *testing.T) {
	env := setupTestEnv(t)
	actor, token := env.newActor(t, "alice", models.RoleUser)

	party := createPartyViaAPI(t, env, token, "queue test")
	item := models.NewMediaItem(models.MediaTypeWeb, actor.ID, "clip", "https://example.com/v")
	require.NoError(t, env.repos.MediaItems.Create(context.Background(), item))

	var req AddPartyItemRequest
	req.MediaItem.ID = item.ID.String()
	req.PartyID = party.ID.String()

	w := env.do(t, http.MethodPost, "/api/partyItems", token, req)
	require.Equal(t, http.StatusOK, w.Code)

	// duplicate add is a no-op success
	w = env.do(t, http.MethodPost, "/api/partyItems", token, req)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := env.repos.Parties.GetByID(context.Background(), party.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)

	req.MediaItem.ID = uuid.New().String()
	w = env.do(t, http.MethodPost, "/api/partyItems", token, req)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, MsgMediaItemNotFound, envelope(t, w)["msg"])
}

func TestMediaRoutes_EditAndDelete(t *testing.T) {
	env := setupTestEnv(t)
	actor, token := env.newActor(t, "alice", models.RoleUser)
	_, strangerToken := env.newActor(t, "mallory", models.RoleUser)
	_, adminToken := env.newActor(t, "root", models.RoleAdmin)

	item := models.NewMediaItem(models.MediaTypeWeb, actor.ID, "before", "https://example.com/v")
	require.NoError(t, env.repos.MediaItems.Create(context.Background(), item))

	t.Run("stranger cannot edit", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/mediaItem/"+item.ID.String(), strangerToken, EditMediaItemRequest{Name: "stolen"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("owner renames", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/mediaItem/"+item.ID.String(), token, EditMediaItemRequest{Name: "after"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, MsgMediaItemEditSuccessful, envelope(t, w)["msg"])

		got, err := env.repos.MediaItems.GetByID(context.Background(), item.ID)
		require.NoError(t, err)
		assert.Equal(t, "after", got.Name)
	})

	t.Run("unknown item is 404", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/mediaItem/"+uuid.New().String(), token, EditMediaItemRequest{Name: "x"})
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, MsgMediaItemNotFound, envelope(t, w)["msg"])
	})

	t.Run("admin deletes someone else's item", func(t *testing.T) {
		w := env.do(t, http.MethodDelete, "/api/mediaItem/"+item.ID.String(), adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, MsgMediaItemDeleteSuccessful, envelope(t, w)["msg"])

		_, err := env.repos.MediaItems.GetByID(context.Background(), item.ID)
		assert.Error(t, err)
	})
}

func TestMediaRoutes_DeleteStripsQueues(t *testing.T) {
	env := setupTestEnv(t)
	actor, token := env.newActor(t, "alice", models.RoleUser)

	party := createPartyViaAPI(t, env, token, "queue test")
	item := models.NewMediaItem(models.MediaTypeWeb, actor.ID, "clip", "https://example.com/v")
	require.NoError(t, env.repos.MediaItems.Create(context.Background(), item))
	require.NoError(t, env.repos.Parties.AddItem(context.Background(), party.ID, item.ID))

	w := env.do(t, http.MethodDelete, "/api/mediaItem/"+item.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := env.repos.Parties.GetByID(context.Background(), party.ID)
	require.NoError(t, err)
	assert.False(t, got.HasItem(item.ID))
}
