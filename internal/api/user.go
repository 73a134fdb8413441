package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/floodyboy/sync-party/internal/auth"
	"github.com/floodyboy/sync-party/internal/db"
	"github.com/floodyboy/sync-party/internal/logger"
	"github.com/floodyboy/sync-party/internal/media"
	"github.com/floodyboy/sync-party/internal/middleware"
	"github.com/floodyboy/sync-party/internal/party"
)

// UserHandler serves the per-user and admin list views
type UserHandler struct {
	users        *db.UserRepository
	partyService *party.Service
	mediaService *media.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *db.UserRepository, partyService *party.Service, mediaService *media.Service) *UserHandler {
	return &UserHandler{users: users, partyService: partyService, mediaService: mediaService}
}

// UserParties handles GET /api/userParties: every party the actor is a
// member of. Clients call this on every notify event and replace their
// state with the result.
func (h *UserHandler) UserParties(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	ctx, cancel := contextWithTimeout(c, 10*time.Second)
	defer cancel()

	parties, err := h.partyService.ListForUser(ctx, actor.ID)
	if err != nil {
		logger.Log.Error().Err(err).Str("user", actor.ID.String()).Msg("Failed to list user parties")
		respondError(c, http.StatusInternalServerError, MsgError)
		return
	}

	respondOK(c, MsgFetchingSuccessful, gin.H{"userParties": parties})
}

// UserItems handles GET /api/userItems: the actor's personal library
func (h *UserHandler) UserItems(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	ctx, cancel := contextWithTimeout(c, 10*time.Second)
	defer cancel()

	items, err := h.mediaService.ListForOwner(ctx, actor.ID)
	if err != nil {
		logger.Log.Error().Err(err).Str("user", actor.ID.String()).Msg("Failed to list user items")
		respondError(c, http.StatusInternalServerError, MsgError)
		return
	}

	respondOK(c, MsgFetchingSuccessful, gin.H{"userItems": items})
}

// AllMediaItems handles GET /api/allMediaItems (admin only)
func (h *UserHandler) AllMediaItems(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, 10*time.Second)
	defer cancel()

	items, err := h.mediaService.ListAll(ctx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list all media items")
		respondError(c, http.StatusInternalServerError, MsgError)
		return
	}

	respondOK(c, MsgFetchingSuccessful, gin.H{"allMediaItems": items})
}

// AllUsers handles GET /api/allUsers (admin only)
func (h *UserHandler) AllUsers(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, 10*time.Second)
	defer cancel()

	users, err := h.users.List(ctx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list users")
		respondError(c, http.StatusInternalServerError, MsgError)
		return
	}

	respondOK(c, MsgFetchingSuccessful, gin.H{"allUsers": users})
}

// SetupUserRoutes registers the user-facing and admin list routes
func SetupUserRoutes(apiGroup *gin.RouterGroup, resolver auth.ActorResolver, users *db.UserRepository, partyService *party.Service, mediaService *media.Service) {
	handler := NewUserHandler(users, partyService, mediaService)

	authed := apiGroup.Group("", middleware.RequireActor(resolver))
	authed.GET("/userParties", handler.UserParties)
	authed.GET("/userItems", handler.UserItems)

	admin := apiGroup.Group("", middleware.RequireActor(resolver), middleware.RequireAdmin())
	admin.GET("/allMediaItems", handler.AllMediaItems)
	admin.GET("/allUsers", handler.AllUsers)
}
