package limiter

//go:generate go run go.uber.org/mock/mockgen -source=./limiter.go -destination=./mocks/limiter_mock.go -package=mocks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"parkspot/config"
	"parkspot/shared"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyRateLimit = "limiter"

	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Result describes the state of a fixed window after a hit.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	Window    time.Duration
}

// Limiter counts hits against a key inside a fixed window.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Key builds the counter key for one client on one route.
func Key(method, route, clientIP string) string {
	return shared.BuildCacheKey(cacheKeyRateLimit, strings.ToUpper(method), route, clientIP)
}

func newResult(count int64, limit int, window time.Duration) Result {
	return Result{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: max(0, limit-int(count)),
		Window:    window,
	}
}

type redisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) Limiter {
	return &redisLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// Allow increments the counter and arms the expiry on the first hit of a window.
func (l *redisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	return newResult(incr.Val(), l.limit, l.window), nil
}

// New picks the store configured in APP_RATE_LIMITER_STORE.
func New(cfg *config.Config, client *redis.Client) Limiter {
	limit := cfg.App.RateLimiter.MaxRequests
	window := time.Duration(cfg.App.RateLimiter.WindowSeconds) * time.Second

	if cfg.App.RateLimiter.Store == StoreMemory || client == nil {
		return NewMemoryLimiter(limit, window, time.Now)
	}

	return NewRedisLimiter(client, limit, window)
}
