package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"clubhub/internal/middleware"
	"clubhub/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Remember is a cache-aside read: it returns the cached JSON value under key,
// or calls load and stores its result for ttl. Cache failures fall through to load.
func Remember[T any](ctx context.Context, name, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if client == nil {
		return load(ctx)
	}

	raw, err := client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached T
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			observability.CacheLookups.WithLabelValues(name, "hit").Inc()
			return cached, nil
		}
		middleware.Logger.WarnContext(ctx, "discarding undecodable cache entry", slog.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	observability.CacheLookups.WithLabelValues(name, "miss").Inc()

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if payload, err := json.Marshal(value); err == nil {
		if err := client.Set(ctx, key, payload, ttl).Err(); err != nil {
			middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	return value, nil
}
