package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/opsboard/internal/config"
	"github.com/phrazzld/opsboard/internal/platform/postgres"
)

// runMigrations opens the database and runs a single goose command.
func runMigrations(ctx context.Context, cfg *config.Config, command string, logger *slog.Logger) error {
	db, err := openDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Error closing database connection", "error", err)
		}
	}()

	logger.Info("Executing migrations", "command", command)
	if err := postgres.Migrate(ctx, db.DB, command, logger); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	return nil
}
