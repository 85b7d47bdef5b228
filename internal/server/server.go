// Package server provides the HTTP server setup and routing configuration.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telecast/internal/api"
	"telecast/internal/config"
	"telecast/internal/db"
	"telecast/internal/ingest"
	"telecast/internal/logger"
	"telecast/internal/middleware"
	"telecast/internal/queue"
	"telecast/internal/stream"
)

// Server represents the HTTP server
type Server struct {
	config        *config.Config
	db            *db.DB
	repos         *db.Repositories
	queueManager  *queue.Manager
	streamService *stream.Service
	ingestor      *ingest.Ingestor
	router        *gin.Engine
	server        *http.Server
	cancelIngest  context.CancelFunc
}

// unconfiguredLocator stands in when no Telegram bot is configured; every
// resolution fails, which surfaces as upstream-unavailable to the client.
type unconfiguredLocator struct{}

func (unconfiguredLocator) ResolveURL(context.Context, string) (string, error) {
	return "", errors.New("no telegram bot configured")
}

// New creates a new server instance. When a bot token is configured the
// Telegram ingestor and locator are wired in; without one the server still
// serves the queue and metadata endpoints.
func New(cfg *config.Config, database *db.DB) (*Server, error) {
	repos := db.NewRepositories(database)
	queueManager := queue.NewManager(repos)

	var locator stream.Locator = unconfiguredLocator{}
	var ingestor *ingest.Ingestor

	if cfg.Telegram.Token != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			return nil, fmt.Errorf("failed to create telegram bot: %w", err)
		}
		locator = ingest.NewTelegramLocator(bot)
		ingestor = ingest.NewIngestor(bot, repos, queueManager, cfg.Telegram.ChannelID, cfg.Telegram.PollTimeout)
	} else {
		logger.Log.Warn().Msg("No telegram bot token configured, ingestion and streaming upstream are disabled")
	}

	proxy := stream.NewProxy(locator, cfg.Streaming.ProbeTimeout)
	streamService := stream.NewService(queueManager, repos, proxy)

	return &Server{
		config:        cfg,
		db:            database,
		repos:         repos,
		queueManager:  queueManager,
		streamService: streamService,
		ingestor:      ingestor,
	}, nil
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
	s.router.Use(cors.Default())

	root := s.router.Group("/")

	api.SetupHealthRoutes(root, s.db)
	api.SetupQueueRoutes(root, s.queueManager)
	api.SetupStreamRoutes(root, s.streamService)
}

// Start starts the ingestor and the HTTP server
func (s *Server) Start() error {
	s.setupRouter()

	if s.ingestor != nil {
		ctx, cancel := context.WithCancel(context.Background())
		s.cancelIngest = cancel
		s.ingestor.Start(ctx)
	}

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

	if s.ingestor != nil {
		if s.cancelIngest != nil {
			s.cancelIngest()
		}
		s.ingestor.Stop()
	}

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}

	logger.Log.Info().Msg("Server stopped")
	return nil
}
