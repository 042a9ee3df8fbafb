// Package cache stores generated suggestion text so identical requests do not
// reach the upstream service twice.
package cache

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/iwvelando/loan-schedule/internal/config"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"go.uber.org/zap"
)

// Cache is a string key/value store with backend-defined expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string) error
}

// Key derives a cache key from the given parts.
func Key(parts ...string) string {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(p)
		// Separator keeps ("ab","c") and ("a","bc") apart.
		_, _ = d.Write([]byte{0})
	}
	return "suggestion:" + strconv.FormatUint(d.Sum64(), 16)
}

// New returns the cache backend selected by cfg.
func New(logger *zap.Logger, cfg config.CacheConfig) (Cache, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = constants.DefaultSuggestionCacheTTL
	}

	switch cfg.Backend {
	case constants.CacheBackendNone:
		return Nop{}, nil
	case "", constants.CacheBackendMemory:
		return NewMemory(DefaultMemoryEntries, ttl), nil
	case constants.CacheBackendRedis:
		if cfg.RedisAddress == "" {
			return nil, fmt.Errorf("redis cache requires an address")
		}
		return NewRedis(logger, cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB, ttl), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Ping checks that c can reach its backing store. In-process caches always can.
func Ping(ctx context.Context, c Cache) error {
	if p, ok := c.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close releases the connections held by c, if any.
func Close(c Cache) error {
	if closer, ok := c.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (string, bool) { return "", false }

func (Nop) Set(context.Context, string, string) error { return nil }
