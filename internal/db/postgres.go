// Package db owns the Postgres pool and the schema migration entry points.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool sizing: booking inserts are short single-statement transactions, so a
// small pool keeps contention on the uniq_active_slot index cheap instead of
// queueing inside Postgres.
const (
	poolMaxConns        = 16
	poolMinConns        = 2
	poolHealthCheck     = 30 * time.Second
	poolConnMaxLifetime = time.Hour
	poolConnMaxIdle     = 15 * time.Minute
	connectPingTimeout  = 5 * time.Second
)

// ConnectPostgres opens a pgx pool against dsn and fails fast when the
// database is unreachable.
func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	cfg.MaxConns = poolMaxConns
	cfg.MinConns = poolMinConns
	cfg.HealthCheckPeriod = poolHealthCheck
	cfg.MaxConnLifetime = poolConnMaxLifetime
	cfg.MaxConnIdleTime = poolConnMaxIdle

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectPingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}
