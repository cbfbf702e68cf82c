// Package database owns the PostgreSQL connection pool. The primary
// store is optional for this service: Open returns ErrNotConfigured
// when no URL is set and callers degrade to the snapshot fallback.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropped95si/alpha-terminal/pkg/config"
)

// ErrNotConfigured is returned by Open when DATABASE_URL is absent.
var ErrNotConfigured = errors.New("database: primary store not configured")

// DB wraps the pgx connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// Open creates the connection pool from config and verifies it with a
// ping. Connection-level failures surface here, before any query runs.
func Open(ctx context.Context, cfg *config.Config) (*DB, error) {
	if !cfg.Database.Configured() {
		return nil, ErrNotConfigured
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db != nil && db.Pool != nil {
		db.Pool.Close()
	}
}

// Ping checks if the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}
