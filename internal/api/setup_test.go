package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/floodyboy/sync-party/internal/auth"
	"github.com/floodyboy/sync-party/internal/db"
	"github.com/floodyboy/sync-party/internal/linkmeta"
	"github.com/floodyboy/sync-party/internal/media"
	"github.com/floodyboy/sync-party/internal/models"
	"github.com/floodyboy/sync-party/internal/party"
	"github.com/floodyboy/sync-party/internal/realtime"
	"github.com/floodyboy/sync-party/internal/upload"
)

// testEnv wires the full route surface over a temporary database, the
// same shape the server assembles in production.
type testEnv struct {
	router    *gin.Engine
	repos     *db.Repositories
	sessions  *auth.SessionRegistry
	hub       *realtime.Hub
	uploadDir string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	database, err := db.New(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(sqlDB, "file://../../migrations"))

	repos := db.NewRepositories(database)
	sessions := auth.NewSessionRegistry()
	gate := auth.NewGate(repos)
	uploadDir := filepath.Join(dir, "uploads")
	require.NoError(t, os.MkdirAll(uploadDir, 0o755))

	mediaService := media.NewService(repos, uploadDir)
	partyService := party.NewService(repos)
	pipeline := upload.NewPipeline(database, repos, uploadDir, 1<<20)
	hub := realtime.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)
	notifier := realtime.NewNotifier(hub)
	fetcher := linkmeta.NewFetcher(2 * time.Second)

	router := gin.New()
	apiGroup := router.Group("/api")

	SetupHealthRoutes(apiGroup, database)
	SetupAuthRoutes(apiGroup, repos.Users, sessions, sessions)
	SetupUserRoutes(apiGroup, sessions, repos.Users, partyService, mediaService)
	SetupMediaRoutes(apiGroup, sessions, mediaService, partyService, gate, notifier)
	SetupPartyRoutes(apiGroup, sessions, partyService, gate, notifier)
	SetupFileRoutes(apiGroup, sessions, mediaService, pipeline, gate, notifier)
	SetupLinkRoutes(apiGroup, sessions, fetcher)
	SetupWSRoutes(router, "/ws", sessions, hub)

	return &testEnv{
		router:    router,
		repos:     repos,
		sessions:  sessions,
		hub:       hub,
		uploadDir: uploadDir,
	}
}

// newActor stores a user row and returns the actor plus a live session
// token.
func (e *testEnv) newActor(t *testing.T, username, role string) (models.Actor, string) {
	t.Helper()

	hash, err := auth.HashPassword("secret")
	require.NoError(t, err)

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Role:         role,
		PasswordHash: hash,
	}
	require.NoError(t, e.repos.Users.Create(context.Background(), user))

	actor := models.Actor{ID: user.ID, Role: user.Role}
	token, err := e.sessions.Issue(actor)
	require.NoError(t, err)

	return actor, token
}

// do performs one request against the in-memory router
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// envelope decodes the uniform response body
func envelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
