package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/floodyboy/sync-party/internal/auth"
	"github.com/floodyboy/sync-party/internal/logger"
	"github.com/floodyboy/sync-party/internal/middleware"
	"github.com/floodyboy/sync-party/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Events carry no data and every re-fetch re-authorizes, so a
	// permissive origin check costs only chatter
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades authenticated clients onto the realtime hub
type WSHandler struct {
	hub *realtime.Hub
}

// NewWSHandler creates a new websocket handler
func NewWSHandler(hub *realtime.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Serve handles GET /ws
func (h *WSHandler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Info().Err(err).Msg("Websocket upgrade failed")
		return
	}

	realtime.NewClient(h.hub, conn)
}

// SetupWSRoutes registers the realtime websocket route on the root
// router; the upgrade requires a resolvable actor like any API call.
func SetupWSRoutes(router gin.IRouter, path string, resolver auth.ActorResolver, hub *realtime.Hub) {
	handler := NewWSHandler(hub)

	router.GET(path, middleware.RequireActor(resolver), handler.Serve)
}
