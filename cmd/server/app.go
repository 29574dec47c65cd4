package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/opsboard/internal/api"
	"github.com/phrazzld/opsboard/internal/config"
	"github.com/phrazzld/opsboard/internal/events"
	"github.com/phrazzld/opsboard/internal/lifecycle"
	"github.com/phrazzld/opsboard/internal/platform/metrics"
	"github.com/phrazzld/opsboard/internal/platform/postgres"
	"github.com/phrazzld/opsboard/internal/platform/sysinfo"
	"github.com/phrazzld/opsboard/internal/redact"
	"github.com/phrazzld/opsboard/internal/service"
	"github.com/phrazzld/opsboard/internal/store"
	"github.com/phrazzld/opsboard/internal/stream"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *database

	taskStore       store.TaskStore
	deploymentStore store.DeploymentStore

	eventEmitter *events.InMemoryEventEmitter
	engine       *lifecycle.Engine
	hub          *stream.Hub
	metrics      *metrics.Metrics

	// pinger and host back the health and host metrics endpoints.
	pinger api.Pinger
	host   api.SnapshotSource

	taskService       service.TaskService
	deploymentService service.DeploymentService
}

// newApplication creates a new application instance with all dependencies initialized.
// It accepts core dependencies like configuration, logger, and database connection that
// must be established before application initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *database) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		pinger: db,
	}

	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.deploymentStore = postgres.NewPostgresDeploymentStore(db, logger)

	// Event fan-out: metrics and the websocket stream observe every
	// deployment status change.
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.metrics = metrics.New()
	app.hub = stream.NewHub(logger)
	app.eventEmitter.RegisterHandler(app.metrics)
	app.eventEmitter.RegisterHandler(app.hub)

	app.engine = lifecycle.NewEngine(app.deploymentStore, app.eventEmitter, lifecycle.Config{
		BuildDuration:  cfg.Lifecycle.BuildDuration,
		DeployDuration: cfg.Lifecycle.DeployDuration,
	}, logger)
	if err := app.metrics.RegisterActiveSequences(app.engine.Active); err != nil {
		return nil, fmt.Errorf("failed to register lifecycle metrics: %w", err)
	}

	host, err := sysinfo.NewCollector(sysinfo.WithConnections(app.metrics.ActiveConnections))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize host metrics: %w", err)
	}
	app.host = host

	app.taskService, err = service.NewTaskService(app.taskStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.deploymentService, err = service.NewDeploymentService(
		app.deploymentStore,
		app.engine,
		app.eventEmitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create deployment service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run recovers orphaned deployments, then serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if app.config.Lifecycle.RecoverOrphans {
		if _, err := app.engine.Recover(ctx); err != nil {
			// the API is still useful without recovery
			app.logger.Error("orphan recovery failed", "error", redact.Error(err))
		}
	}

	if err := app.serve(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
	defer cancel()

	if err := app.engine.Stop(ctx); err != nil {
		app.logger.Error("Error stopping lifecycle engine", "error", err)
	}
	app.hub.Close()

	if err := app.db.Close(); err != nil {
		app.logger.Error("Error closing database connection", "error", err)
	}

	app.logger.Info("Application shutdown completed", "at", time.Now().UTC())
}
