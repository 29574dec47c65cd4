//go:build integration

package testdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const postgresImage = "postgres:16-alpine"

var errNoDocker = errors.New("DATABASE_URL not set and no container runtime reachable")

// startContainer launches a throwaway PostgreSQL container and returns its
// connection string. The container is reaped by the testcontainers ryuk
// sidecar when the test binary exits.
func startContainer() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := tcpostgres.Run(ctx,
		postgresImage,
		tcpostgres.WithDatabase("opsboard_test"),
		tcpostgres.WithUsername("opsboard"),
		tcpostgres.WithPassword("opsboard"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errNoDocker, err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return "", fmt.Errorf("failed to read container connection string: %w", err)
	}
	return connStr, nil
}
