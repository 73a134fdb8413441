package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/floodyboy/sync-party/internal/auth"
	"github.com/floodyboy/sync-party/internal/linkmeta"
	"github.com/floodyboy/sync-party/internal/logger"
	"github.com/floodyboy/sync-party/internal/middleware"
)

// LinkMetadataRequest is the body of POST /api/linkMetadata
type LinkMetadataRequest struct {
	URL string `json:"url"`
}

// LinkHandler prefetches titles for web links
type LinkHandler struct {
	fetcher *linkmeta.Fetcher
}

// NewLinkHandler creates a new link metadata handler
func NewLinkHandler(fetcher *linkmeta.Fetcher) *LinkHandler {
	return &LinkHandler{fetcher: fetcher}
}

// Metadata handles POST /api/linkMetadata. The prefetch is best
// effort: any failure is a success=false envelope, never a 5xx.
func (h *LinkHandler) Metadata(c *gin.Context) {
	var req LinkMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		respondError(c, http.StatusBadRequest, MsgValidationError)
		return
	}

	title, err := h.fetcher.Title(c.Request.Context(), req.URL)
	if err != nil {
		logger.Log.Debug().Err(err).Str("url", req.URL).Msg("Link metadata prefetch failed")
		respond(c, http.StatusOK, false, MsgMetadataFetchFailed, nil)
		return
	}

	respondOK(c, MsgMetadataFetchSuccessful, gin.H{"title": title})
}

// SetupLinkRoutes registers link metadata routes
func SetupLinkRoutes(apiGroup *gin.RouterGroup, resolver auth.ActorResolver, fetcher *linkmeta.Fetcher) {
	handler := NewLinkHandler(fetcher)

	apiGroup.POST("/linkMetadata", middleware.RequireActor(resolver), handler.Metadata)
}
