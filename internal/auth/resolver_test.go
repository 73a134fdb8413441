package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floodyboy/sync-party/internal/models"
)

func TestSessionRegistry_Resolve(t *testing.T) {
	registry := NewSessionRegistry()
	actor := models.Actor{ID: uuid.New(), Role: models.RoleUser}

	token, err := registry.Issue(actor)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/userParties", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		got, err := registry.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, actor, got)
	})

	t.Run("token query parameter", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/ws?token="+token, nil)

		got, err := registry.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, actor, got)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/userParties", nil)

		_, err := registry.Resolve(req)
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("unknown token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/userParties", nil)
		req.Header.Set("Authorization", "Bearer deadbeef")

		_, err := registry.Resolve(req)
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("revoked token", func(t *testing.T) {
		registry.Revoke(token)

		req := httptest.NewRequest("GET", "/api/userParties", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		_, err := registry.Resolve(req)
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})
}

func TestSessionRegistry_IssueUniqueTokens(t *testing.T) {
	registry := NewSessionRegistry()
	actor := models.Actor{ID: uuid.New(), Role: models.RoleUser}

	a, err := registry.Issue(actor)
	require.NoError(t, err)
	b, err := registry.Issue(actor)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
