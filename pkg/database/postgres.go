package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/quantengine/pkg/config"
)

// DB wraps the pgxpool.Pool used by the storage collaborators (rankings, signals, snapshots).
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a connection pool and verifies it with a ping.
func New(ctx context.Context, cfg *config.Config) (*DB, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
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

// Close closes the database connection pool
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Ping checks if the database is accessible
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// HealthStatus is reported by the ops server's /health endpoint.
type HealthStatus struct {
	Healthy      bool          `json:"healthy"`
	ResponseTime time.Duration `json:"response_time"`
	TotalConns   int32         `json:"total_conns"`
	IdleConns    int32         `json:"idle_conns"`
	Error        string        `json:"error,omitempty"`
}

// HealthCheck pings the pool and reports basic pool statistics.
func (db *DB) HealthCheck(ctx context.Context) HealthStatus {
	start := time.Now()
	if err := db.Pool.Ping(ctx); err != nil {
		return HealthStatus{Error: err.Error()}
	}

	stats := db.Pool.Stat()
	return HealthStatus{
		Healthy:      true,
		ResponseTime: time.Since(start),
		TotalConns:   stats.TotalConns(),
		IdleConns:    stats.IdleConns(),
	}
}
