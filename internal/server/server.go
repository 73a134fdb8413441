// Package server provides the HTTP server setup and routing configuration.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/floodyboy/sync-party/internal/api"
	"github.com/floodyboy/sync-party/internal/auth"
	"github.com/floodyboy/sync-party/internal/config"
	"github.com/floodyboy/sync-party/internal/db"
	"github.com/floodyboy/sync-party/internal/linkmeta"
	"github.com/floodyboy/sync-party/internal/logger"
	"github.com/floodyboy/sync-party/internal/media"
	"github.com/floodyboy/sync-party/internal/middleware"
	"github.com/floodyboy/sync-party/internal/party"
	"github.com/floodyboy/sync-party/internal/realtime"
	"github.com/floodyboy/sync-party/internal/upload"
)

// Server represents the HTTP server
type Server struct {
	config       *config.Config
	db           *db.DB
	repos        *db.Repositories
	sessions     *auth.SessionRegistry
	gate         *auth.Gate
	mediaService *media.Service
	partyService *party.Service
	pipeline     *upload.Pipeline
	hub          *realtime.Hub
	notifier     *realtime.Notifier
	fetcher      *linkmeta.Fetcher
	router       *gin.Engine
	server       *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, database *db.DB) *Server {
	repos := db.NewRepositories(database)
	sessions := auth.NewSessionRegistry()
	gate := auth.NewGate(repos)
	mediaService := media.NewService(repos, cfg.Uploads.Dir)
	partyService := party.NewService(repos)
	pipeline := upload.NewPipeline(database, repos, cfg.Uploads.Dir, cfg.Uploads.MaxUploadBytes)
	hub := realtime.NewHub()
	notifier := realtime.NewNotifier(hub)
	fetcher := linkmeta.NewFetcher(cfg.Uploads.LinkFetchTimeout)

	return &Server{
		config:       cfg,
		db:           database,
		repos:        repos,
		sessions:     sessions,
		gate:         gate,
		mediaService: mediaService,
		partyService: partyService,
		pipeline:     pipeline,
		hub:          hub,
		notifier:     notifier,
		fetcher:      fetcher,
	}
}

// setupRouter initializes the Gin router with middleware and routes
func (s *Server) setupRouter() {
	if s.config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	s.router.Use(middleware.RequestLogger())
	s.router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if s.config.Server.AllowedOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{s.config.Server.AllowedOrigins}
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	s.router.Use(cors.New(corsConfig))

	apiGroup := s.router.Group("/api")

	api.SetupHealthRoutes(apiGroup, s.db)
	api.SetupAuthRoutes(apiGroup, s.repos.Users, s.sessions, s.sessions)
	api.SetupUserRoutes(apiGroup, s.sessions, s.repos.Users, s.partyService, s.mediaService)
	api.SetupMediaRoutes(apiGroup, s.sessions, s.mediaService, s.partyService, s.gate, s.notifier)
	api.SetupPartyRoutes(apiGroup, s.sessions, s.partyService, s.gate, s.notifier)
	api.SetupFileRoutes(apiGroup, s.sessions, s.mediaService, s.pipeline, s.gate, s.notifier)
	api.SetupLinkRoutes(apiGroup, s.sessions, s.fetcher)
	api.SetupWSRoutes(s.router, s.config.Server.WebsocketPath, s.sessions, s.hub)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.setupRouter()

	go s.hub.Run()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.server = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	logger.Log.Info().
		Str("host", s.config.Server.Host).
		Int("port", s.config.Server.Port).
		Msg("Starting HTTP server")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Log.Info().Msg("Shutting down server gracefully")

	if s.hub != nil {
		s.hub.Stop()
	}

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}

	logger.Log.Info().Msg("Server stopped")
	return nil
}
