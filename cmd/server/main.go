// Package main implements the opsboard server: a DevOps dashboard API for
// tasks and simulated deployments backed by PostgreSQL.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/phrazzld/opsboard/internal/config"
	"github.com/phrazzld/opsboard/internal/platform/logger"
	"github.com/phrazzld/opsboard/internal/platform/postgres"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

// newRootCmd builds the command tree. Running the root command without a
// subcommand serves the API.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "opsboard",
		Short:         "DevOps dashboard API for tasks and deployments",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	migrateCmd := &cobra.Command{
		Use:       "migrate [" + strings.Join(postgres.MigrationCommands, "|") + "]",
		Short:     "Run database migrations (default: up)",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: postgres.MigrationCommands,
		RunE:      runMigrate,
	}

	rootCmd.AddCommand(serveCmd, migrateCmd)
	return rootCmd
}

// bootstrap loads configuration and sets up structured logging.
func bootstrap() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"environment", cfg.Server.Environment,
		"log_level", cfg.Server.LogLevel)
	return cfg, l, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, l, err := bootstrap()
	if err != nil {
		return err
	}

	db, err := openDatabase(ctx, cfg.Database, l)
	if err != nil {
		return err
	}

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db.DB, "up", l); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	app, err := newApplication(cfg, l, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	command := "up"
	if len(args) == 1 {
		command = args[0]
	}

	cfg, l, err := bootstrap()
	if err != nil {
		return err
	}

	return runMigrations(cmd.Context(), cfg, command, l)
}
