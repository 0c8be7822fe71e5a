// Package db opens the Postgres pool and applies the embedded migrations.
package db

import (
	"context"
	"time"

	"salon_booking_backend/platform/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool connects and pings before returning, so a bad DATABASE_URL
// fails at startup.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.GetDatabaseURL())
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = cfg.GetDBMaxConns()
	poolConfig.MinConns = cfg.GetDBMinConns()
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Readiness adapts a pool to the /api/ready check.
type Readiness struct {
	pool *pgxpool.Pool
}

func NewReadiness(pool *pgxpool.Pool) *Readiness {
	return &Readiness{pool: pool}
}

func (r *Readiness) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
