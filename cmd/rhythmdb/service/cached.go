package service

import (
	"context"
	"encoding/json"

	"github.com/harukilab/rhythmdb/common/cache"
	"github.com/harukilab/rhythmdb/common/metrics"
)

// fetchCached runs the read-through pattern shared by every cached lookup:
// try the cache under key, fall back to load on miss or decode failure, and
// populate the cache with the loaded value. The namespace labels hit/miss
// counters.
func fetchCached[T any](ctx context.Context, c cache.Cache, m *metrics.Metrics, namespace, key string, load func(context.Context) (T, error)) (T, error) {
	if raw, ok := c.Get(ctx, key); ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			m.CacheHits.WithLabelValues(namespace).Inc()
			return cached, nil
		}
	}
	m.CacheMisses.WithLabelValues(namespace).Inc()

	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	// nil results are not cached; a record created later must become
	// visible on the next read, not after the TTL
	if raw, err := json.Marshal(value); err == nil && string(raw) != "null" {
		c.Set(ctx, key, raw)
	}

	return value, nil
}
