package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/forgehq/forge/config"
	"github.com/forgehq/forge/internal/database"
	"github.com/forgehq/forge/internal/domain"
	httpHandler "github.com/forgehq/forge/internal/http"
	"github.com/forgehq/forge/internal/http/middleware"
	"github.com/forgehq/forge/internal/repository"
	"github.com/forgehq/forge/internal/ws"
	"github.com/forgehq/forge/pkg/logger"
	"github.com/forgehq/forge/pkg/tracing"
)

// App encapsulates the application dependencies and configuration
type App struct {
	config *config.Config
	logger logger.Logger
	db     *sql.DB

	// Repositories
	projectRepo     domain.ProjectRepository
	projectFileRepo domain.ProjectFileRepository
	runStateRepo    domain.RunStateRepository

	// WebSocket session layer
	registry   *ws.Registry
	controller *ws.Controller

	mux    *http.ServeMux
	server *http.Server
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config) *App {
	return &App{
		config: cfg,
		logger: logger.NewLogger(cfg.LogLevel),
		mux:    http.NewServeMux(),
	}
}

// GetConfig returns the app configuration
func (a *App) GetConfig() *config.Config {
	return a.config
}

// GetLogger returns the app logger
func (a *App) GetLogger() logger.Logger {
	return a.logger
}

// GetMux returns the HTTP mux, used by tests
func (a *App) GetMux() *http.ServeMux {
	return a.mux
}

// InitTracing configures OpenCensus before anything that records spans
func (a *App) InitTracing() error {
	if err := tracing.InitTracing(&a.config.Tracing); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if a.config.Tracing.Enabled {
		a.logger.WithFields(map[string]interface{}{
			"exporter":             a.config.Tracing.TraceExporter,
			"sampling_probability": a.config.Tracing.SamplingProbability,
		}).Info("Tracing enabled")
	}
	return nil
}

// InitDB opens the connection pool and ensures the schema exists
func (a *App) InitDB() error {
	db, err := database.Connect(&a.config.Database, a.config.Tracing.Enabled)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.InitializeDatabase(db); err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	a.db = db
	return nil
}

// InitRepositories creates the repository layer
func (a *App) InitRepositories() error {
	if a.db == nil {
		return fmt.Errorf("database not initialized")
	}

	a.projectRepo = repository.NewProjectRepository(a.db)
	a.projectFileRepo = repository.NewProjectFileRepository(a.db)
	a.runStateRepo = repository.NewRunStateRepository(a.db)
	return nil
}

// InitHandlers wires the HTTP and WebSocket surfaces
func (a *App) InitHandlers() error {
	a.registry = ws.NewRegistry()
	a.controller = ws.NewController(a.projectRepo, a.runStateRepo, a.registry, a.logger)

	authMiddleware := middleware.NewAuthMiddleware(a.config.Security.PasetoPublicKey)
	requireAuth := authMiddleware.RequireAuth()

	rootHandler := httpHandler.NewRootHandler(a.config.Version)
	rootHandler.RegisterRoutes(a.mux)

	apiMux := http.NewServeMux()
	projectHandler := httpHandler.NewProjectHandler(a.projectRepo, a.logger)
	projectHandler.RegisterRoutes(apiMux)

	fileHandler := httpHandler.NewProjectFileHandler(a.projectFileRepo, a.logger)
	fileHandler.RegisterRoutes(apiMux)

	runStateHandler := httpHandler.NewRunStateHandler(a.runStateRepo, a.logger)
	runStateHandler.RegisterRoutes(apiMux)

	a.mux.Handle("/api/", requireAuth(apiMux))

	agentHandler := httpHandler.NewAgentHandler(a.controller, a.logger)
	agentHandler.RegisterRoutes(a.mux, requireAuth)

	return nil
}

// Initialize runs all initialization steps in order
func (a *App) Initialize() error {
	if err := a.InitTracing(); err != nil {
		return err
	}
	if err := a.InitDB(); err != nil {
		return err
	}
	if err := a.InitRepositories(); err != nil {
		return err
	}
	if err := a.InitHandlers(); err != nil {
		return err
	}
	return nil
}

// Start runs the HTTP server until the context is cancelled, then shuts
// down gracefully.
func (a *App) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)

	var handler http.Handler = a.mux
	if a.config.Tracing.Enabled {
		handler = middleware.TracingMiddleware(handler)
	}

	a.server = &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	a.logger.WithFields(map[string]interface{}{
		"addr":        addr,
		"environment": a.config.Environment,
		"version":     a.config.Version,
	}).Info("Starting server")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown releases application resources
func (a *App) Shutdown() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
