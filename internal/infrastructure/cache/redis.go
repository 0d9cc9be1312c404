package cache

import (
	"banking-api/internal/config"
	"banking-api/internal/domain/loan"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultSimulationTTL = 10 * time.Minute

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is not configured")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("Redis client connected", "addr", cfg.Addr, "db", cfg.DB)
	return rdb, nil
}

// SimulationCache keeps loan simulation results in Redis as JSON. Redis
// failures degrade to cache misses.
type SimulationCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ loan.SimulationCache = (*SimulationCache)(nil)

func NewSimulationCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *SimulationCache {
	if client == nil {
		panic("redis client cannot be nil for SimulationCache")
	}
	if ttl <= 0 {
		ttl = defaultSimulationTTL
	}
	return &SimulationCache{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "SimulationCache"),
	}
}

func (c *SimulationCache) Get(ctx context.Context, key string) (*loan.Simulation, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "Simulation cache read failed", "key", key, slog.Any("error", err))
		}
		return nil, false
	}

	var sim loan.Simulation
	if err := json.Unmarshal(raw, &sim); err != nil {
		c.logger.WarnContext(ctx, "Discarding undecodable cached simulation", "key", key, slog.Any("error", err))
		return nil, false
	}
	return &sim, true
}

func (c *SimulationCache) Set(ctx context.Context, key string, sim *loan.Simulation) {
	raw, err := json.Marshal(sim)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to encode simulation for cache", "key", key, slog.Any("error", err))
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "Simulation cache write failed", "key", key, slog.Any("error", err))
	}
}
