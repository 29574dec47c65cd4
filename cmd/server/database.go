package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/opsboard/internal/config"
	"github.com/phrazzld/opsboard/internal/redact"
)

// database is a pgx pool exposed through database/sql. Closing the sql.DB
// does not close the pool, so both are released together here.
type database struct {
	*sql.DB
	pool *pgxpool.Pool
}

// Close closes the sql.DB and then the underlying pool.
func (d *database) Close() error {
	err := d.DB.Close()
	d.pool.Close()
	return err
}

// openDatabase creates a pgx connection pool sized from cfg and verifies it
// with a ping.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*database, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %s", redact.Error(err))
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %s", redact.Error(err))
	}

	db := &database{DB: stdlib.OpenDBFromPool(pool), pool: pool}

	pingCtx, cancel := context.WithTimeout(ctx, 2*cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %s", redact.Error(err))
	}

	logger.Info("Database connection established",
		"max_conns", cfg.MaxConns,
		"max_conn_idle_time", cfg.MaxConnIdleTime)
	return db, nil
}
