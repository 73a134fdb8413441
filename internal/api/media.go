package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/floodyboy/sync-party/internal/auth"
	"github.com/floodyboy/sync-party/internal/logger"
	"github.com/floodyboy/sync-party/internal/media"
	"github.com/floodyboy/sync-party/internal/middleware"
	"github.com/floodyboy/sync-party/internal/models"
	"github.com/floodyboy/sync-party/internal/party"
	"github.com/floodyboy/sync-party/internal/realtime"
)

// NewMediaItemRequest is the body of POST /api/mediaItem
type NewMediaItemRequest struct {
	MediaItem struct {
		Type string `json:"type"`
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"mediaItem"`
	PartyID string `json:"partyId"`
}

// EditMediaItemRequest is the body of PUT /api/mediaItem/:id
type EditMediaItemRequest struct {
	Name string `json:"name"`
}

// AddPartyItemRequest is the body of POST /api/partyItems
type AddPartyItemRequest struct {
	MediaItem struct {
		ID string `json:"id"`
	} `json:"mediaItem"`
	PartyID string `json:"partyId"`
}

// MediaHandler handles media item mutations
type MediaHandler struct {
	mediaService *media.Service
	partyService *party.Service
	gate         *auth.Gate
	notifier     *realtime.Notifier
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(mediaService *media.Service, partyService *party.Service, gate *auth.Gate, notifier *realtime.Notifier) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		partyService: partyService,
		gate:         gate,
		notifier:     notifier,
	}
}

// Create handles POST /api/mediaItem: a new web or user item, owned by
// the actor, optionally appended to a party queue. File items never
// come through here; they go through the upload pipeline.
func (h *MediaHandler) Create(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	var req NewMediaItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, MsgValidationError)
		return
	}
	if req.MediaItem.Type == models.MediaTypeFile {
		respondError(c, http.StatusBadRequest, MsgValidationError)
		return
	}

	ctx, cancel := contextWithTimeout(c, 10*time.Second)
	defer cancel()

	item := models.NewMediaItem(req.MediaItem.Type, actor.ID, req.MediaItem.Name, req.MediaItem.URL)
	created, err := h.mediaService.Create(ctx, item)
	if err != nil {
		if media.IsValidation(err) {
			logger.Log.Info().Err(err).Msg("Validation error while creating media item")
			respondError(c, http.StatusBadRequest, MsgValidationError)
			return
		}
		logger.Log.Error().Err(err).Msg("Failed to create media item")
		respondError(c, http.StatusInternalServerError, MsgError)
		return
	}

	// Without a party the item just lands in the owner's library
	if req.PartyID != "" {
		partyID, err := uuid.Parse(req.PartyID)
		if err != nil {
			respondError(c, http.StatusBadRequest, MsgValidationError)
			return
		}
		if !h.canAddToParty(c, actor, partyID) {
			// Item stays in the owner's personal library, never unattached
			respondError(c, http.StatusForbidden, MsgNotAuthorized)
			return
		}
		if err := h.partyService.AddItem(ctx, partyID, created.ID); err != nil {
			logger.Log.Error().Err(err).Str("party_id", partyID.String()).Msg("Failed to append new item to party")
			respondError(c, http.StatusInternalServerError, MsgError)
			return
		}
		h.notifier.NotifyPartyChanged(partyID)
	}

	h.notifier.NotifyMediaItemsChanged()

	respondOK(c, MsgMediaItemAddSuccessful, gin.H{"mediaItem": created})
}

// AddToParty handles POST /api/partyItems: append an existing item to
// a party queue. Duplicate adds are no-op successes.
func (h *MediaHandler) AddToParty(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	var req AddPartyItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, MsgValidationError)
		return
	}

	itemID, err := uuid.Parse(req.MediaItem.ID)
	if err != nil {
		respondError(c, http.StatusBadRequest, MsgValidationError)
		return
	}
	partyID, err := uuid.Parse(req.PartyID)
	if err != nil {
		respondError(c, http.StatusBadRequest, MsgValidationError)
		return
	}

	if !h.canAddToParty(c, actor, partyID) {
		respondError(c, http.StatusForbidden, MsgNotAuthorized)
		return
	}

	ctx, cancel := contextWithTimeout(c, 10*time.Second)
	defer cancel()

	if err := h.partyService.AddItem(ctx, partyID, itemID); err != nil {
		switch {
		case party.IsNotFound(err):
			respondError(c, http.StatusNotFound, MsgPartyNotFound)
		case err == party.ErrUnknownItem:
			respondError(c, http.StatusNotFound, MsgMediaItemNotFound)
		default:
			logger.Log.Error().Err(err).Str("party_id", partyID.String()).Msg("Failed to add item to party")
			respondError(c, http.StatusInternalServerError, MsgError)
		}
		return
	}

	h.notifier.NotifyPartyChanged(partyID)
	h.notifier.NotifyMediaItemsChanged()

	respondOK(c, MsgMediaItemAddSuccessful, nil)
}

// Edit handles PUT /api/mediaItem/:id, today restricted to renaming
func (h *MediaHandler) Edit(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, MsgValidationError)
		return
	}

	var req EditMediaItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, MsgValidationError)
		return
	}

	ctx, cancel := contextWithTimeout(c, 10*time.Second)
	defer cancel()

	item, err := h.mediaService.Get(ctx, id)
	if err != nil {
		if media.IsNotFound(err) {
			respondError(c, http.StatusNotFound, MsgMediaItemNotFound)
			return
		}
		logger.Log.Error().Err(err).Str("id", id.String()).Msg("Failed to load media item for edit")
		respondError(c, http.StatusInternalServerError, MsgError)
		return
	}

	if !h.gate.CanMutateItem(actor, item) {
		respondError(c, http.StatusForbidden, MsgNotAuthorized)
		return
	}

	updated, err := h.mediaService.UpdateName(ctx, id, req.Name)
	if err != nil {
		if media.IsValidation(err) {
			respondError(c, http.StatusBadRequest, MsgValidationError)
			return
		}
		logger.Log.Error().Err(err).Str("id", id.String()).Msg("Failed to update media item")
		respondError(c, http.StatusInternalServerError, MsgError)
		return
	}

	h.notifier.NotifyMediaItemsChanged()

	respondOK(c, MsgMediaItemEditSuccessful, gin.H{"mediaItem": updated})
}

// Delete handles DELETE /api/mediaItem/:id. Users delete their own
// items, admins delete any. File items lose their backing file too.
func (h *MediaHandler) Delete(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, MsgValidationError)
		return
	}

	ctx, cancel := contextWithTimeout(c, 10*time.Second)
	defer cancel()

	item, err := h.mediaService.Get(ctx, id)
	if err != nil {
		if media.IsNotFound(err) {
			respondError(c, http.StatusNotFound, MsgMediaItemNotFound)
			return
		}
		logger.Log.Error().Err(err).Str("id", id.String()).Msg("Failed to load media item for delete")
		respondError(c, http.StatusInternalServerError, MsgError)
		return
	}

	if !h.gate.CanMutateItem(actor, item) {
		respondError(c, http.StatusForbidden, MsgNotAuthorized)
		return
	}

	affectedParties, err := h.mediaService.Delete(ctx, item)
	if err != nil {
		logger.Log.Error().Err(err).Str("id", id.String()).Msg("Failed to delete media item")
		respondError(c, http.StatusInternalServerError, MsgError)
		return
	}

	for _, partyID := range affectedParties {
		h.notifier.NotifyPartyChanged(partyID)
	}
	h.notifier.NotifyMediaItemsChanged()

	respondOK(c, MsgMediaItemDeleteSuccessful, nil)
}

// canAddToParty runs the gate's queue-append check: the actor must be
// a member, and the party active unless the actor is an admin.
func (h *MediaHandler) canAddToParty(c *gin.Context, actor models.Actor, partyID uuid.UUID) bool {
	ctx, cancel := contextWithTimeout(c, 5*time.Second)
	defer cancel()

	return h.gate.CanAppendToParty(ctx, actor, partyID) == nil
}

// SetupMediaRoutes registers media item mutation routes
func SetupMediaRoutes(apiGroup *gin.RouterGroup, resolver auth.ActorResolver, mediaService *media.Service, partyService *party.Service, gate *auth.Gate, notifier *realtime.Notifier) {
	handler := NewMediaHandler(mediaService, partyService, gate, notifier)

	authed := apiGroup.Group("", middleware.RequireActor(resolver))
	authed.POST("/mediaItem", handler.Create)
	authed.PUT("/mediaItem/:id", handler.Edit)
	authed.DELETE("/mediaItem/:id", handler.Delete)
	authed.POST("/partyItems", handler.AddToParty)
}
