// Package server provides HTTP server implementation for the SentryLog application.
// It handles routing, middleware configuration, and server lifecycle management.
//
// The server package follows a structured initialization approach with dependency injection
// and proper lifecycle management. It handles graceful shutdown, maintenance tasks, and
// GDPR-compliant logging. The server is designed to be secure, maintainable, and resilient,
// with appropriate error handling and recovery mechanisms.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/sentrylog/internal/auth"
	"github.com/yasinhessnawi1/sentrylog/internal/config"
	"github.com/yasinhessnawi1/sentrylog/internal/constants"
	"github.com/yasinhessnawi1/sentrylog/internal/database"
	"github.com/yasinhessnawi1/sentrylog/internal/handlers"
	"github.com/yasinhessnawi1/sentrylog/internal/repository"
	"github.com/yasinhessnawi1/sentrylog/internal/service"
	"github.com/yasinhessnawi1/sentrylog/internal/utils"
	"github.com/yasinhessnawi1/sentrylog/internal/utils/gdprlog"
	"github.com/yasinhessnawi1/sentrylog/migrations"
)

// Handlers contains all HTTP handlers for the application. It centralizes
// handler management for consistent request processing and simplifies
// dependency injection throughout the application.
type Handlers struct {
	// AccessLogHandler exposes the admin query surface (spec §4.E/§6):
	// listing logs, suspicious-IP detection, IP details, and ban actions.
	AccessLogHandler *handlers.AccessLogHandler
}

// AuthProviders contains the authentication providers shared across routes.
type AuthProviders struct {
	// JWTService validates the admin bearer tokens the query surface requires.
	JWTService *auth.JWTService
}

// Server represents the API server for the SentryLog application. It
// encapsulates all server components and handles server lifecycle
// management, including initialization, startup, and graceful shutdown.
//
// Every dependency is a named field constructed once in NewServer and
// passed explicitly to its consumers; there are no package-level mutable
// globals (spec §9's "singleton services... avoid process-wide mutable
// globals" redesign note).
type Server struct {
	// Config contains application configuration
	Config *config.AppConfig

	// Db provides database access
	Db *database.Pool

	// router handles HTTP routing
	router chi.Router

	// Handlers contains all HTTP request handlers
	Handlers *Handlers

	// authProviders contains authentication services
	authProviders *AuthProviders

	// store is the Access-Log Store (spec §4.A)
	store repository.AccessLogRepository

	// pipeline is the non-blocking ingestion pipeline (spec §4.B)
	pipeline *service.Pipeline

	// authority is the IP-management authority (spec §4.C)
	authority *service.Authority

	// detection is the suspicious-IP detection engine (spec §4.D)
	detection *service.DetectionEngine

	// query composes store/detection/authority into the admin surface (spec §4.E)
	query *service.AdminQueryService

	// httpServer is the underlying HTTP server
	httpServer *http.Server

	// gdprLogger handles GDPR-compliant logging
	gdprLogger *gdprlog.GDPRLogger
}

// NewServer creates a new server instance with all required components. It
// initializes the database, authentication providers, the Store, the
// ingestion pipeline, the IP-management authority, the detection engine,
// the admin query surface, and HTTP handlers, then sets up routes.
//
// Parameters:
//   - cfg: Application configuration including database, server, and auth settings
//
// Returns:
//   - A fully initialized Server instance ready to start
//   - An error if initialization of any component fails
//
// The server initialization follows a specific order to ensure proper
// dependency management: database → auth providers → domain services →
// handlers → routes.
func NewServer(cfg *config.AppConfig) (*Server, error) {
	s := &Server{
		Config: cfg,
	}

	if err := s.setupDatabase(); err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}

	if err := s.setupAuthProviders(); err != nil {
		return nil, fmt.Errorf("failed to set up auth providers: %w", err)
	}

	s.setupDomainServices()

	s.setupHandlers()

	// Initialize GDPR logger if not already initialized by utils.InitLogger
	if err := s.setupGDPRLogging(); err != nil {
		log.Warn().Err(err).Msg("Failed to set up GDPR logging, falling back to standard logging")
	}

	s.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Server.ServerAddress(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  constants.DefaultIdleTimeout,
	}

	return s, nil
}

// setupGDPRLogging initializes GDPR-compliant logging if not already done.
//
// Returns:
//   - An error if GDPR logging initialization fails
func (s *Server) setupGDPRLogging() error {
	if utils.GetGDPRLogger() != nil {
		s.gdprLogger = utils.GetGDPRLogger()
		return nil
	}

	gdprLogger, err := gdprlog.NewGDPRLogger(&s.Config.GDPRLogging)
	if err != nil {
		return fmt.Errorf("failed to create GDPR logger: %w", err)
	}

	if err := gdprLogger.SetupLogRotation(); err != nil {
		return fmt.Errorf("failed to set up GDPR log rotation: %w", err)
	}

	s.gdprLogger = gdprLogger
	utils.SetGDPRLogger(gdprLogger)

	log.Info().Msg("GDPR logging configured successfully")
	return nil
}

// setupDatabase initializes the database connection and runs migrations.
//
// Returns:
//   - An error if database connection or migration fails
func (s *Server) setupDatabase() error {
	db, err := database.Connect(s.Config)
	if err != nil {
		return err
	}

	s.Db = db

	migrator := migrations.NewMigrator(db)
	if err := migrator.RunMigrations(context.Background()); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	return nil
}

// setupAuthProviders initializes the JWT service backing admin authentication.
//
// Returns:
//   - An error if auth provider initialization fails
func (s *Server) setupAuthProviders() error {
	s.authProviders = &AuthProviders{
		JWTService: auth.NewJWTService(&s.Config.JWT),
	}
	return nil
}

// setupDomainServices wires the Store, ingestion Pipeline, IP-Management
// Authority, Detection Engine, and Admin Query Surface — the CORE subsystems
// of spec §2 — into the server. Each is constructed once and held as a named
// field; nothing here is a package-level global.
func (s *Server) setupDomainServices() {
	s.store = repository.NewAccessLogRepository(s.Db)
	banRepo := repository.NewBanEntryRepository(s.Db)
	whitelistRepo := repository.NewWhitelistRepository(s.Db)

	s.pipeline = service.NewPipeline(s.store, s.Config.Ingestion.QueueDepth, s.Config.Ingestion.Workers)

	s.authority = service.NewAuthority(banRepo, whitelistRepo, s.Config.Security.IPBanning.CacheRefreshInterval)

	s.detection = service.NewDetectionEngine(s.store, s.store, s.Config.Detection)

	s.query = service.NewAdminQueryService(s.store, s.detection, s.authority)
}

// setupHandlers initializes all HTTP request handlers using the
// previously-wired domain services.
func (s *Server) setupHandlers() {
	s.Handlers = &Handlers{
		AccessLogHandler: handlers.NewAccessLogHandler(s.query),
	}
}

// Start starts the HTTP server and sets up signal handling for graceful
// shutdown. It runs in a blocking mode, waiting for either server errors or
// shutdown signals.
//
// Returns:
//   - An error if the server fails to start or encounters an error during operation
func (s *Server) Start() error {
	serverErrors := make(chan error, 1)

	go func() {
		log.Info().
			Str("address", s.Config.Server.ServerAddress()).
			Msg("Starting server")

		serverErrors <- s.httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	s.SetupMaintenanceTasks()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info().
			Str("signal", sig.String()).
			Msg("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := s.Shutdown(ctx); err != nil {
			if closeErr := s.httpServer.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the server, draining the ingestion
// pipeline's queue before closing the database connection.
//
// Parameters:
//   - ctx: Context with timeout for the shutdown operation
//
// Returns:
//   - An error if shutdown fails within the context timeout
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	log.Info().Msg("Server stopped gracefully")

	if s.pipeline != nil {
		if err := s.pipeline.Close(ctx); err != nil {
			log.Warn().Err(err).Msg("Ingestion pipeline did not drain before shutdown deadline")
		}
	}

	s.Db.Close()
	log.Info().Msg("Database connection closed")

	if s.gdprLogger != nil {
		if err := s.gdprLogger.CleanupLogs(); err != nil {
			log.Warn().Err(err).Msg("Failed to clean up GDPR logs during shutdown")
		}
	}

	return nil
}

// SetupMaintenanceTasks sets up periodic maintenance tasks for the server:
// sweeping expired bans from the IP-Management Authority and rotating GDPR
// logs according to retention policy. The Authority's own ban/whitelist
// cache refresh runs on its own ticker (started in NewAuthority) and is not
// duplicated here.
func (s *Server) SetupMaintenanceTasks() {
	ticker := time.NewTicker(constants.DBMaintenanceInterval)
	go func() {
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)

			if s.authority != nil {
				if count, err := s.authority.CleanupExpiredBans(ctx); err != nil {
					log.Error().Err(err).Msg("Failed to clean up expired IP bans")
				} else if count > 0 {
					log.Info().Int64("count", count).Msg("Cleaned up expired IP bans")
				}
			}

			if s.gdprLogger != nil {
				if err := s.gdprLogger.CleanupLogs(); err != nil {
					log.Error().Err(err).Msg("Failed to clean up expired GDPR logs")
				}
			}

			cancel()
		}
	}()
}
