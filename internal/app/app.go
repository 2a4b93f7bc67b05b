// Package app wires configuration, logging, services, and the HTTP
// router into a runnable dashboard server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"clinicpulse/internal/config"
	"clinicpulse/internal/infrastructure"
	customMiddleware "clinicpulse/internal/middleware"
	"clinicpulse/internal/services"
	handlers "clinicpulse/internal/transport/http"
)

const (
	// Version is the server version reported by /healthz.
	Version = "1.0.0"
	// AppName is the human-readable service name used in startup logs.
	AppName = "ClinicPulse - Waiting-Time Compliance Dashboard"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	ReportService *services.ReportService
	Logger        *slog.Logger
}

// NewApplication creates a new application instance with dependency injection
func NewApplication(configFile string) (*Application, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", Version))

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize paths: %w", err)
	}
	logger.Info("Paths resolved",
		slog.String("data_dir", paths.DataDir),
		slog.String("derived_dir", paths.DerivedDir),
		slog.String("logs_dir", paths.LogsDir),
		slog.String("dataset", cfg.Dataset.File))

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		ReportService: services.NewReportService(cfg, logger),
		Logger:        logger,
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	if a.Config.Server.RateLimit.Enabled {
		r.Use(customMiddleware.RateLimiter(
			a.Config.Server.RateLimit.RPS,
			a.Config.Server.RateLimit.Burst))
	}

	// Health and metrics live outside the JSON content-type group so
	// promhttp controls its own headers.
	r.Mount("/", handlers.NewHealthHandler(Version).Routes())

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		reportHandler := handlers.NewReportHandler(a.ReportService, a.Logger)
		r.Mount("/", reportHandler.Routes())
	})

	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start starts the HTTP server in the background.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Server listening",
		slog.Int("port", a.Config.Server.Port),
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	infrastructure.CloseLogFile()
	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
