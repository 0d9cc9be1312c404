package middleware

import (
	"banking-api/internal/api/handler/dto"
	"banking-api/internal/config"
	"banking-api/internal/infrastructure/monitoring"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	rateLimitWindow  = time.Second
	limiterIdleSweep = 10 * time.Minute
)

// RateLimiterMiddleware limits requests per client IP. With Redis it counts
// requests in a fixed one second window shared by every instance. Without
// Redis, or when Redis fails, it falls back to an in-process token bucket.
type RateLimiterMiddleware struct {
	redisClient *redis.Client
	limiters    sync.Map
	cfg         config.RateLimitConfig
	logger      *slog.Logger
	window      time.Duration
}

func NewRateLimiterMiddleware(cfg config.RateLimitConfig, redisClient *redis.Client, logger *slog.Logger) *RateLimiterMiddleware {
	logger = logger.With("component", "RateLimiter")
	switch {
	case !cfg.Enabled:
		logger.Info("Rate limiting is disabled via configuration.")
	case redisClient == nil:
		logger.Info("Rate limiter using in-memory token buckets", "rps", cfg.RPS, "burst", cfg.Burst)
	default:
		logger.Info("Rate limiter using Redis fixed window", "rps", cfg.RPS, "window", rateLimitWindow)
	}

	return &RateLimiterMiddleware{
		redisClient: redisClient,
		cfg:         cfg,
		logger:      logger,
		window:      rateLimitWindow,
	}
}

// windowLimit is the number of requests one client may make per window.
func (rl *RateLimiterMiddleware) windowLimit() int64 {
	return max(int64(math.Ceil(rl.cfg.RPS*rl.window.Seconds())), 1)
}

func (rl *RateLimiterMiddleware) getLimiter(ip string) *rate.Limiter {
	if limiter, ok := rl.limiters.Load(ip); ok {
		return limiter.(*rate.Limiter)
	}
	limiter, _ := rl.limiters.LoadOrStore(ip, rate.NewLimiter(rate.Limit(rl.cfg.RPS), max(rl.cfg.Burst, 1)))
	return limiter.(*rate.Limiter)
}

// SweepIdle drops token buckets that have refilled completely, meaning their
// client has been quiet for a while.
func (rl *RateLimiterMiddleware) SweepIdle() {
	burst := float64(max(rl.cfg.Burst, 1))
	rl.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= burst {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// RunSweeper calls SweepIdle periodically until ctx is done.
func (rl *RateLimiterMiddleware) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(limiterIdleSweep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.SweepIdle()
		}
	}
}

func (rl *RateLimiterMiddleware) allowRedis(ctx context.Context, ip string) (bool, error) {
	key := fmt.Sprintf("ratelimit:%s", ip)

	pipe := rl.redisClient.TxPipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incrCmd.Val() <= rl.windowLimit(), nil
}

func (rl *RateLimiterMiddleware) allow(ctx context.Context, ip string) bool {
	if rl.redisClient != nil {
		allowed, err := rl.allowRedis(ctx, ip)
		if err == nil {
			return allowed
		}
		rl.logger.ErrorContext(ctx, "Redis rate limit check failed, using local limiter", "ip", ip, slog.Any("error", err))
	}
	return rl.getLimiter(ip).Allow()
}

func (rl *RateLimiterMiddleware) extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	if xRealIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); xRealIP != "" && net.ParseIP(xRealIP) != nil {
		return xRealIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (rl *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := rl.extractIP(r)
		if rl.allow(r.Context(), ip) {
			next.ServeHTTP(w, r)
			return
		}

		monitoring.RecordRateLimited()
		rl.logger.WarnContext(r.Context(), "Rate limit exceeded", "ip", ip)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", fmt.Sprintf("%.0f", rl.window.Seconds()))
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(dto.ErrorResponse{
			Error: dto.ErrorDetail{Message: "Rate limit exceeded"},
		})
	})
}
