//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/opsboard/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

var (
	setupOnce sync.Once
	setupURL  string
	setupErr  error
)

// GetTestDatabaseURL returns the database URL configured in the environment.
// It checks DATABASE_URL and OPSBOARD_TEST_DB_URL in that order.
func GetTestDatabaseURL() string {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return dbURL
	}
	return os.Getenv("OPSBOARD_TEST_DB_URL")
}

// GetTestDBWithT returns a migrated database connection and registers its
// cleanup with t.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	setupOnce.Do(func() {
		setupURL, setupErr = resolveURL()
		if setupErr != nil {
			return
		}
		setupErr = migrate(setupURL)
	})
	if setupErr != nil {
		if errors.Is(setupErr, errNoDocker) {
			t.Skipf("no database available: %v", setupErr)
		}
		require.NoError(t, setupErr, "failed to prepare test database")
	}

	db, err := sql.Open("pgx", setupURL)
	require.NoError(t, err, "failed to open test database")

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to ping test database")

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close database connection: %v", err)
		}
	})
	return db
}

// WithTx executes a test function within a transaction, automatically rolling back
// after the test completes. This ensures test isolation and prevents side effects.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "Failed to begin transaction")

	defer func() {
		err := tx.Rollback()
		// sql.ErrTxDone is expected if tx is already committed or rolled back
		if err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}

func resolveURL() (string, error) {
	if dbURL := GetTestDatabaseURL(); dbURL != "" {
		return dbURL, nil
	}
	return startContainer()
}

func migrate(dbURL string) error {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return postgres.Migrate(ctx, db, "up", nil)
}
