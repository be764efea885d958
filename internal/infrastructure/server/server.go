package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	handlers "github.com/GriffinCanCode/userstore/internal/api/http"
	"github.com/GriffinCanCode/userstore/internal/api/middleware"
	"github.com/GriffinCanCode/userstore/internal/api/routes"
	"github.com/GriffinCanCode/userstore/internal/domain/storage"
	"github.com/GriffinCanCode/userstore/internal/infrastructure/config"
	"github.com/GriffinCanCode/userstore/internal/infrastructure/logging"
	"github.com/GriffinCanCode/userstore/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/userstore/internal/infrastructure/tracing"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	http     *http.Server
	routes   *routes.Table
	resolver *storage.Resolver
	tracer   *tracing.Tracer
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer creates a new server instance. It prepares the storage root
// first; a *storage.ConfigurationError means the server must not start.
func NewServer(cfg *config.Config) (*Server, error) {
	logger := logging.NewFromLevel(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing storage server",
		zap.String("port", cfg.Server.Port),
		zap.String("prefix", cfg.Server.URLPrefix),
		zap.Bool("server_mode", cfg.Storage.ServerMode),
		zap.String("storage_dir", cfg.Storage.Dir),
	)

	if err := storage.Initialize(cfg.Storage, logger); err != nil {
		logger.Error("Storage directory unusable", zap.Error(err))
		return nil, err
	}

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("userstore", logger.Logger)

	resolver := storage.NewResolver(cfg.Storage, logger).WithMetrics(metrics)
	table := routes.New(cfg.Server.URLPrefix)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORS.AllowOrigins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}
	router.Use(middleware.RemoteUser(cfg.Auth.UserHeader))

	h := handlers.NewHandlers(resolver, table, metrics, logger, cfg.Storage.ServerMode)
	registerRoutes(router.Group(cfg.Server.URLPrefix), table, h, metrics)

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		routes:   table,
		resolver: resolver,
		tracer:   tracer,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

func registerRoutes(base *gin.RouterGroup, table *routes.Table, h *handlers.Handlers, metrics *monitoring.Metrics) {
	table.GET(base, routes.Health, "/health", h.Health)
	table.GET(base, routes.BrowserIndex, "/browser/", h.BrowserIndex)
	table.GET(base, routes.Metrics, "/metrics", gin.WrapH(metrics.Handler()))

	api := base.Group("/storage", middleware.RequireUser())
	table.GET(api, routes.StorageDirectory, "/directory", h.StorageDirectory)
	table.GET(api, routes.StorageFiles, "/files", h.StorageFiles)
	table.GET(api, routes.StorageUsage, "/usage", h.StorageUsage)
	table.GET(api, routes.StorageArchive, "/archive", h.StorageArchive)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Routes returns the named route table.
func (s *Server) Routes() *routes.Table {
	return s.routes
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.http.Addr
}

// Run starts the HTTP server and blocks until it stops. It returns nil
// after a graceful Shutdown, including one that happened before Run.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx
// expires, then releases the tracer and flushes the logger.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var err error
	if err = s.http.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to shut down HTTP server", zap.Error(err))
		err = fmt.Errorf("failed to shut down http server: %w", err)
	}

	s.tracer.Close()
	_ = s.logger.Sync()
	return err
}
