package cache

import (
	"context"
	"sync"
	"time"

	"github.com/harukilab/rhythmdb/common/logger"
)

// Cache is a best-effort read-side cache. Implementations never propagate
// backend failures to callers: a failed read reports a miss, and a failed
// write or invalidation is logged and dropped. Reads and writes of the
// primary store must not depend on cache availability.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Delete(ctx context.Context, keys ...string)
	Close() error
}

// Backend is the minimal key-value surface a RedisCache needs. It is
// satisfied by the common redis client wrapper.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, expiry time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// RedisCache backs the Cache interface with Redis. Entries are written
// with a default TTL; the TTL is the only expiry this layer relies on.
type RedisCache struct {
	backend Backend
	ttl     time.Duration
	log     *logger.Logger
}

// NewRedisCache creates a Redis-backed cache
func NewRedisCache(backend Backend, ttl time.Duration, log *logger.Logger) *RedisCache {
	return &RedisCache{
		backend: backend,
		ttl:     ttl,
		log:     log,
	}
}

// Get retrieves a value; backend errors degrade to a miss
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, found, err := c.backend.Get(ctx, key)
	if err != nil {
		c.log.Warn("cache read failed, treating as miss", "key", key, "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	return []byte(val), true
}

// Set stores a value; backend errors are logged and dropped
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) {
	if err := c.backend.Set(ctx, key, string(value), c.ttl); err != nil {
		c.log.Warn("cache write failed, skipping", "key", key, "error", err)
	}
}

// Delete invalidates keys; backend errors are logged and dropped
func (c *RedisCache) Delete(ctx context.Context, keys ...string) {
	if err := c.backend.Delete(ctx, keys...); err != nil {
		c.log.Warn("cache invalidation failed, entries expire by TTL", "keys", keys, "error", err)
	}
}

// Close closes the cache (for interface compatibility)
func (c *RedisCache) Close() error {
	return nil
}

// MemoryCache is an in-memory cache implementation, used in tests and
// when the Redis cache is disabled.
type MemoryCache struct {
	data map[string]*cacheEntry
	mu   sync.RWMutex
	ttl  time.Duration
	done chan struct{}
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	c := &MemoryCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
		done: make(chan struct{}),
	}

	go c.cleanup()

	return c
}

// Get retrieves a value from cache
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[key]
	if !exists {
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		return nil, false
	}

	return entry.value, true
}

// Set stores a value in cache
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = &cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Delete removes values from cache
func (c *MemoryCache) Delete(ctx context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.data, key)
	}
}

// Close stops the cleanup goroutine and drops all entries. The map stays
// allocated so writes racing shutdown cannot panic.
func (c *MemoryCache) Close() error {
	close(c.done)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*cacheEntry)
	return nil
}

// cleanup removes expired entries periodically
func (c *MemoryCache) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.data {
				if now.After(entry.expiresAt) {
					delete(c.data, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
