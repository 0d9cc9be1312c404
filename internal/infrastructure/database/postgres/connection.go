package postgres

import (
	"banking-api/internal/config"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	applicationName = "banking-api"
	pingAttempts    = 3
)

var pingRetryDelay = 2 * time.Second

// NewConnectionPool builds the shared pool for every repository. The caller owns
// it and must Close it on shutdown.
func NewConnectionPool(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := configurePool(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("Opening PostgreSQL pool", "host", poolConfig.ConnConfig.Host, "db", poolConfig.ConnConfig.Database, "max_conns", poolConfig.MaxConns)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := verifyConnection(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("PostgreSQL pool ready")
	return pool, nil
}

func configurePool(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is empty in configuration")
	}
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config from URL: %w", err)
	}

	poolConfig.MaxConns = 10
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	if cfg.MaxIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxIdleTime
	}
	poolConfig.HealthCheckPeriod = time.Minute

	// Ledger timestamps and loan month arithmetic assume UTC sessions.
	params := poolConfig.ConnConfig.RuntimeParams
	if _, ok := params["application_name"]; !ok {
		params["application_name"] = applicationName
	}
	params["timezone"] = "UTC"

	return poolConfig, nil
}

func verifyConnection(ctx context.Context, db DBPool, logger *slog.Logger) error {
	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.Ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}

		logger.Warn("Database ping failed", "attempt", attempt, "max_attempts", pingAttempts, slog.Any("error", err))
		if attempt < pingAttempts {
			select {
			case <-ctx.Done():
				return fmt.Errorf("failed to ping database on connect: %w", ctx.Err())
			case <-time.After(pingRetryDelay):
			}
		}
	}
	return fmt.Errorf("failed to ping database on connect: %w", err)
}
