package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/floodyboy/sync-party/internal/auth"
	"github.com/floodyboy/sync-party/internal/db"
	"github.com/floodyboy/sync-party/internal/logger"
	"github.com/floodyboy/sync-party/internal/middleware"
	"github.com/floodyboy/sync-party/internal/models"
)

// LoginRequest carries login form credentials
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthHandler handles login, logout and session probing
type AuthHandler struct {
	users    *db.UserRepository
	sessions *auth.SessionRegistry
	resolver auth.ActorResolver
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *db.UserRepository, sessions *auth.SessionRegistry, resolver auth.ActorResolver) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, resolver: resolver}
}

// Login handles POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, MsgValidationError)
		return
	}

	user, err := auth.VerifyCredentials(c.Request.Context(), h.users, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			respondError(c, http.StatusUnauthorized, MsgNotAuthenticated)
			return
		}
		logger.Log.Error().Err(err).Msg("Failed to verify credentials")
		respondError(c, http.StatusInternalServerError, MsgError)
		return
	}

	token, err := h.sessions.Issue(models.Actor{ID: user.ID, Role: user.Role})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to issue session token")
		respondError(c, http.StatusInternalServerError, MsgError)
		return
	}

	respondOK(c, MsgLoginSuccessful, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

// Logout handles POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		h.sessions.Revoke(header[len(prefix):])
	}
	respondOK(c, MsgLogoutSuccessful, nil)
}

// Auth handles POST /api/auth, called by clients on every app reload
func (h *AuthHandler) Auth(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, MsgNotAuthenticated)
		return
	}

	ctx, cancel := contextWithTimeout(c, 5*time.Second)
	defer cancel()

	user, err := h.users.GetByID(ctx, actor.ID)
	if err != nil {
		if db.IsNotFound(err) {
			respondError(c, http.StatusUnauthorized, MsgNotAuthenticated)
			return
		}
		logger.Log.Error().Err(err).Str("id", actor.ID.String()).Msg("Failed to load user for auth probe")
		respondError(c, http.StatusInternalServerError, MsgError)
		return
	}

	respondOK(c, MsgIsAuthenticated, gin.H{
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

// SetupAuthRoutes registers login, logout and session probe routes
func SetupAuthRoutes(apiGroup *gin.RouterGroup, users *db.UserRepository, sessions *auth.SessionRegistry, resolver auth.ActorResolver) {
	handler := NewAuthHandler(users, sessions, resolver)

	apiGroup.POST("/login", handler.Login)
	apiGroup.POST("/logout", handler.Logout)
	apiGroup.POST("/auth", middleware.RequireActor(resolver), handler.Auth)
}
