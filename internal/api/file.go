package api

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/floodyboy/sync-party/internal/auth"
	"github.com/floodyboy/sync-party/internal/db"
	"github.com/floodyboy/sync-party/internal/logger"
	"github.com/floodyboy/sync-party/internal/media"
	"github.com/floodyboy/sync-party/internal/middleware"
	"github.com/floodyboy/sync-party/internal/models"
	"github.com/floodyboy/sync-party/internal/realtime"
	"github.com/floodyboy/sync-party/internal/upload"
)

// FileHandler handles file upload and gated file access
type FileHandler struct {
	mediaService *media.Service
	pipeline     *upload.Pipeline
	gate         *auth.Gate
	notifier     *realtime.Notifier
}

// NewFileHandler creates a new file handler
func NewFileHandler(mediaService *media.Service, pipeline *upload.Pipeline, gate *auth.Gate, notifier *realtime.Notifier) *FileHandler {
	return &FileHandler{
		mediaService: mediaService,
		pipeline:     pipeline,
		gate:         gate,
		notifier:     notifier,
	}
}

// Upload handles POST /api/file (multipart: owner, name, partyId,
// file). The corresponding media item is created and appended to the
// party as one unit by the pipeline; notifications go out only after
// that unit is durable.
func (h *FileHandler) Upload(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	ownerField := c.PostForm("owner")
	name := c.PostForm("name")
	partyField := c.PostForm("partyId")

	owner, err := uuid.Parse(ownerField)
	if err != nil {
		respondError(c, http.StatusBadRequest, MsgValidationError)
		return
	}
	// Users upload on their own behalf; only admins may attribute
	// uploads to someone else
	if owner != actor.ID && !actor.IsAdmin() {
		respondError(c, http.StatusForbidden, MsgNotAuthorized)
		return
	}

	partyID, err := uuid.Parse(partyField)
	if err != nil {
		respondError(c, http.StatusBadRequest, MsgValidationError)
		return
	}

	// The append is authorized up front; the pipeline itself only
	// guards against the party vanishing mid-upload
	if err := h.authorizeAppend(c, actor, partyID); err != nil {
		switch {
		case db.IsNotFound(err):
			respondError(c, http.StatusBadRequest, MsgFileUploadError)
		case errors.Is(err, auth.ErrNotAuthorized):
			respondError(c, http.StatusForbidden, MsgNotAuthorized)
		default:
			logger.Log.Error().Err(err).Str("party_id", partyID.String()).Msg("Upload authorization check failed")
			respondError(c, http.StatusInternalServerError, MsgError)
		}
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		logger.Log.Info().Err(err).Msg("Upload request without usable file part")
		respondError(c, http.StatusBadRequest, MsgValidationError)
		return
	}
	defer file.Close()

	item, err := h.pipeline.Process(c.Request.Context(), upload.Request{
		Owner:    owner,
		Name:     name,
		PartyID:  partyID,
		FileName: header.Filename,
		Size:     header.Size,
		Body:     file,
	})
	if err != nil {
		switch {
		case media.IsValidation(err):
			respondError(c, http.StatusBadRequest, MsgValidationError)
		case errors.Is(err, upload.ErrPartyMissing), errors.Is(err, upload.ErrTooLarge):
			respondError(c, http.StatusBadRequest, MsgFileUploadError)
		default:
			logger.Log.Error().Err(err).Msg("Upload failed")
			respondError(c, http.StatusInternalServerError, MsgFileUploadError)
		}
		return
	}

	h.notifier.NotifyPartyChanged(partyID)
	h.notifier.NotifyMediaItemsChanged()

	respondOK(c, MsgUploadSuccessful, gin.H{"mediaItem": item})
}

func (h *FileHandler) authorizeAppend(c *gin.Context, actor models.Actor, partyID uuid.UUID) error {
	ctx, cancel := contextWithTimeout(c, 5*time.Second)
	defer cancel()
	return h.gate.CanAppendToParty(ctx, actor, partyID)
}

// Progress handles GET /api/fileProgress/:id: the pipeline stage and
// byte percentage of an in-flight upload. Terminal states are one-shot
// reads; the record is dropped once reported.
func (h *FileHandler) Progress(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, MsgValidationError)
		return
	}

	status, ok := h.pipeline.Status(id)
	if !ok {
		respondError(c, http.StatusNotFound, MsgError)
		return
	}

	if status.State == upload.StateDone || status.State == upload.StateFailed {
		h.pipeline.Forget(id)
	}

	respondOK(c, MsgFetchingSuccessful, gin.H{"progress": status})
}

// GetFile handles GET /api/file/:id?party=xyz[&download]. Access runs
// through the gate against the party named in the request; every
// failing condition produces the same noFileAccess denial.
func (h *FileHandler) GetFile(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusUnauthorized, MsgNoFileAccess)
		return
	}
	partyID, err := uuid.Parse(c.Query("party"))
	if err != nil {
		respondError(c, http.StatusUnauthorized, MsgNoFileAccess)
		return
	}

	ctx, cancel := contextWithTimeout(c, 5*time.Second)
	defer cancel()

	if err := h.gate.CanAccessFile(ctx, actor, itemID, partyID); err != nil {
		if errors.Is(err, auth.ErrNoFileAccess) {
			respondError(c, http.StatusUnauthorized, MsgNoFileAccess)
			return
		}
		logger.Log.Error().Err(err).Str("id", itemID.String()).Msg("File access check failed")
		respondError(c, http.StatusInternalServerError, MsgError)
		return
	}

	item, err := h.mediaService.Get(ctx, itemID)
	if err != nil || !item.IsFile() {
		// Queued id without a usable file row; indistinguishable from
		// any other denial on purpose
		respondError(c, http.StatusUnauthorized, MsgNoFileAccess)
		return
	}

	path := h.mediaService.FilePath(item)
	if _, err := os.Stat(path); err != nil {
		logger.Log.Error().Err(err).Str("id", itemID.String()).Str("path", path).Msg("Backing file missing for served item")
		respondError(c, http.StatusInternalServerError, MsgError)
		return
	}

	if _, wantsDownload := c.GetQuery("download"); wantsDownload {
		c.FileAttachment(path, media.DownloadName(item))
		return
	}
	c.File(path)
}

// SetupFileRoutes registers file routes
func SetupFileRoutes(apiGroup *gin.RouterGroup, resolver auth.ActorResolver, mediaService *media.Service, pipeline *upload.Pipeline, gate *auth.Gate, notifier *realtime.Notifier) {
	handler := NewFileHandler(mediaService, pipeline, gate, notifier)

	authed := apiGroup.Group("", middleware.RequireActor(resolver))
	authed.POST("/file", handler.Upload)
	authed.GET("/file/:id", handler.GetFile)
	authed.GET("/fileProgress/:id", handler.Progress)
}
