package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis keeps suggestions in a shared Redis instance so several servers reuse them.
type Redis struct {
	logger *zap.Logger
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(logger *zap.Logger, addr, password string, db int, ttl time.Duration) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Redis{
		logger: logger,
		client: rdb,
		ttl:    ttl,
	}
}

// Get reports a miss for absent keys and for read failures. Failures are
// logged, absent keys are not.
func (r *Redis) Get(ctx context.Context, key string) (string, bool) {
	val, err := r.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		return val, true
	case errors.Is(err, redis.Nil):
		return "", false
	default:
		r.logger.Warn("redis cache read failed",
			zap.String("op", "cache.Redis.Get"),
			zap.String("key", key),
			zap.Error(err),
		)
		return "", false
	}
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
