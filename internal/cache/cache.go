// Package cache stores paginated upstream responses keyed by listing key and
// page number, so repeated visits to the same page skip the API for a while.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/nfrund/zina/internal/config"
)

// DefaultTTL is how long a cached page stays fresh.
const DefaultTTL = 5 * time.Minute

// Store keeps raw page payloads. A miss is reported as ok == false with a nil
// error; errors are reserved for backend failures.
type Store interface {
	Get(ctx context.Context, key string, page int) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, page int, value []byte) error
	// Invalidate drops every cached page of key.
	Invalidate(ctx context.Context, key string) error
}

// NewStore builds the store selected by the configuration.
func NewStore(cfg config.Provider) (Store, error) {
	switch cfg.GetCacheBackend() {
	case config.CacheBackendMemory:
		return NewMemoryStore(cfg.GetCacheTTL()), nil
	case config.CacheBackendRedis:
		return NewRedisStore(cfg.GetRedisAddr(), cfg.GetCacheTTL())
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", cfg.GetCacheBackend())
	}
}
