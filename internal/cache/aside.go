package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Aside implements the cache-aside pattern: fill dest from cache when
// present, otherwise run fill and store its result. A missing or broken
// Redis degrades to calling fill directly; cache write failures are
// swallowed since the source of truth already answered.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, fill func() error) error {
	if client != nil {
		raw, err := client.Get(ctx, key).Result()
		if err == nil {
			if uerr := json.Unmarshal([]byte(raw), dest); uerr == nil {
				return nil
			}
			// Corrupt entry, drop it and fall through to fill.
			client.Del(ctx, key)
		} else if !errors.Is(err, redis.Nil) && !errors.Is(err, context.Canceled) {
			// Redis unavailable, serve from source.
		}
	}

	if err := fill(); err != nil {
		return err
	}

	if client != nil {
		if raw, err := json.Marshal(dest); err == nil {
			client.Set(ctx, key, raw, ttl)
		}
	}
	return nil
}

// Invalidate drops a cached entry after a write. Best-effort: without
// Redis the entry simply ages out of nothing.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}
