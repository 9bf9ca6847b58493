package cache

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nfrund/zina/internal/metrics"
)

// Pages is a typed view over a Store that JSON-encodes values of T.
type Pages[T any] struct {
	store Store
}

// NewPages wraps store. A nil store disables caching: every call loads.
func NewPages[T any](store Store) *Pages[T] {
	return &Pages[T]{store: store}
}

// GetOrLoad returns the cached page for key, calling load on a miss and
// caching its result. Backend failures are logged and treated as misses;
// load errors are returned and never cached.
func (p *Pages[T]) GetOrLoad(ctx context.Context, key string, page int, load func(context.Context) (T, error)) (T, error) {
	if p.store != nil {
		raw, ok, err := p.store.Get(ctx, key, page)
		switch {
		case err != nil:
			metrics.CacheLookup(metrics.CacheError)
			slog.WarnContext(ctx, "Page cache read failed", "key", key, "page", page, "error", err)
		case ok:
			var v T
			if err := json.Unmarshal(raw, &v); err == nil {
				metrics.CacheLookup(metrics.CacheHit)
				return v, nil
			}
			metrics.CacheLookup(metrics.CacheError)
			slog.WarnContext(ctx, "Discarding undecodable cache entry", "key", key, "page", page)
		default:
			metrics.CacheLookup(metrics.CacheMiss)
		}
	}

	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if p.store != nil {
		if raw, err := json.Marshal(v); err == nil {
			if err := p.store.Set(ctx, key, page, raw); err != nil {
				slog.WarnContext(ctx, "Page cache write failed", "key", key, "page", page, "error", err)
			}
		}
	}
	return v, nil
}

// Invalidate drops every cached page of key.
func (p *Pages[T]) Invalidate(ctx context.Context, key string) error {
	if p.store == nil {
		return nil
	}
	return p.store.Invalidate(ctx, key)
}
