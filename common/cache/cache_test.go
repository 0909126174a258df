package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harukilab/rhythmdb/common/logger"
)

func testLog() *logger.Logger {
	return logger.New("error", "text")
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	_, found := c.Get(ctx, "missing")
	assert.False(t, found)

	c.Set(ctx, "k", []byte("v"))
	val, found := c.Get(ctx, "k")
	require.True(t, found)
	assert.Equal(t, []byte("v"), val)

	c.Delete(ctx, "k")
	_, found = c.Get(ctx, "k")
	assert.False(t, found)
}

func TestMemoryCache_DeleteMany(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))
	c.Set(ctx, "c", []byte("3"))

	c.Delete(ctx, "a", "b")

	_, found := c.Get(ctx, "a")
	assert.False(t, found)
	_, found = c.Get(ctx, "b")
	assert.False(t, found)
	_, found = c.Get(ctx, "c")
	assert.True(t, found)
}

func TestMemoryCache_ExpiredEntryIsAMiss(t *testing.T) {
	c := NewMemoryCache(time.Millisecond)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"))
	time.Sleep(5 * time.Millisecond)

	_, found := c.Get(ctx, "k")
	assert.False(t, found)
}

func TestMemoryCache_CloseDropsEntriesAndToleratesLateCalls(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"))
	require.NoError(t, c.Close())

	_, found := c.Get(ctx, "k")
	assert.False(t, found)

	// calls racing shutdown must not panic
	c.Set(ctx, "late", []byte("v"))
	c.Delete(ctx, "late")
}

// memoryBackend is a map-based Backend for RedisCache tests
type memoryBackend struct {
	data map[string]string
}

func (b *memoryBackend) Get(ctx context.Context, key string) (string, bool, error) {
	val, ok := b.data[key]
	return val, ok, nil
}

func (b *memoryBackend) Set(ctx context.Context, key, value string, expiry time.Duration) error {
	b.data[key] = value
	return nil
}

func (b *memoryBackend) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(b.data, k)
	}
	return nil
}

// failingBackend errors on every call
type failingBackend struct{}

func (failingBackend) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, fmt.Errorf("connection refused")
}

func (failingBackend) Set(ctx context.Context, key, value string, expiry time.Duration) error {
	return fmt.Errorf("connection refused")
}

func (failingBackend) Delete(ctx context.Context, keys ...string) error {
	return fmt.Errorf("connection refused")
}

func TestRedisCache_RoundTrip(t *testing.T) {
	backend := &memoryBackend{data: make(map[string]string)}
	c := NewRedisCache(backend, time.Minute, testLog())
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"))
	val, found := c.Get(ctx, "k")
	require.True(t, found)
	assert.Equal(t, []byte("v"), val)

	c.Delete(ctx, "k")
	_, found = c.Get(ctx, "k")
	assert.False(t, found)
}

func TestRedisCache_BackendErrorsDegrade(t *testing.T) {
	c := NewRedisCache(failingBackend{}, time.Minute, testLog())
	ctx := context.Background()

	// none of these panic or surface an error to the caller
	c.Set(ctx, "k", []byte("v"))
	_, found := c.Get(ctx, "k")
	assert.False(t, found)
	c.Delete(ctx, "k")
}
