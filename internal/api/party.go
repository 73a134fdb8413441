package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/floodyboy/sync-party/internal/auth"
	"github.com/floodyboy/sync-party/internal/logger"
	"github.com/floodyboy/sync-party/internal/middleware"
	"github.com/floodyboy/sync-party/internal/models"
	"github.com/floodyboy/sync-party/internal/party"
	"github.com/floodyboy/sync-party/internal/realtime"
)

// CreatePartyRequest is the body of POST /api/party
type CreatePartyRequest struct {
	Name string `json:"name"`
}

// UpdatePartyRequest is the body of PUT /api/party. The incoming party
// record carries the full desired state; deleteParty switches the
// request into a destroy.
type UpdatePartyRequest struct {
	Party       models.Party `json:"party"`
	DeleteParty bool         `json:"deleteParty"`
}

// PartyHandler handles party lifecycle and membership mutations
type PartyHandler struct {
	partyService *party.Service
	gate         *auth.Gate
	notifier     *realtime.Notifier
}

// NewPartyHandler creates a new party handler
func NewPartyHandler(partyService *party.Service, gate *auth.Gate, notifier *realtime.Notifier) *PartyHandler {
	return &PartyHandler{partyService: partyService, gate: gate, notifier: notifier}
}

// Create handles POST /api/party
func (h *PartyHandler) Create(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	var req CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, MsgValidationError)
		return
	}

	ctx, cancel := contextWithTimeout(c, 10*time.Second)
	defer cancel()

	created, err := h.partyService.Create(ctx, req.Name, actor.ID)
	if err != nil {
		if party.IsValidation(err) {
			respondError(c, http.StatusBadRequest, MsgValidationError)
			return
		}
		logger.Log.Error().Err(err).Msg("Failed to create party")
		respondError(c, http.StatusInternalServerError, MsgError)
		return
	}

	h.notifier.NotifyPartyChanged(created.ID)

	respondOK(c, MsgPartyCreateSuccessful, gin.H{"party": created})
}

// Update handles PUT /api/party: full-state update or, with the
// deleteParty flag, destruction. Only the owner or an admin may do
// either.
func (h *PartyHandler) Update(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	var req UpdatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, MsgValidationError)
		return
	}
	if req.Party.ID == uuid.Nil {
		respondError(c, http.StatusBadRequest, MsgValidationError)
		return
	}

	ctx, cancel := contextWithTimeout(c, 10*time.Second)
	defer cancel()

	current, err := h.partyService.Get(ctx, req.Party.ID)
	if err != nil {
		if party.IsNotFound(err) {
			respondError(c, http.StatusNotFound, MsgPartyNotFound)
			return
		}
		logger.Log.Error().Err(err).Str("id", req.Party.ID.String()).Msg("Failed to load party for update")
		respondError(c, http.StatusInternalServerError, MsgError)
		return
	}

	if !h.gate.CanMutateParty(actor, current) {
		respondError(c, http.StatusForbidden, MsgNotAuthorized)
		return
	}

	if req.DeleteParty {
		if err := h.partyService.Delete(ctx, current.ID); err != nil {
			logger.Log.Error().Err(err).Str("id", current.ID.String()).Msg("Failed to delete party")
			respondError(c, http.StatusInternalServerError, MsgError)
			return
		}

		h.notifier.NotifyPartyChanged(current.ID)

		respondOK(c, MsgPartyDeleteSuccessful, nil)
		return
	}

	updated, err := h.partyService.Update(ctx, &req.Party)
	if err != nil {
		if party.IsValidation(err) {
			respondError(c, http.StatusBadRequest, MsgValidationError)
			return
		}
		logger.Log.Error().Err(err).Str("id", current.ID.String()).Msg("Failed to update party")
		respondError(c, http.StatusInternalServerError, MsgError)
		return
	}

	h.notifier.NotifyPartyChanged(updated.ID)

	respondOK(c, MsgPartyUpdateSuccessful, gin.H{"party": updated})
}

// SetupPartyRoutes registers party routes
func SetupPartyRoutes(apiGroup *gin.RouterGroup, resolver auth.ActorResolver, partyService *party.Service, gate *auth.Gate, notifier *realtime.Notifier) {
	handler := NewPartyHandler(partyService, gate, notifier)

	authed := apiGroup.Group("", middleware.RequireActor(resolver))
	authed.POST("/party", handler.Create)
	authed.PUT("/party", handler.Update)
}
