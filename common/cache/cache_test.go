package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/formengine/common/cache"
	"github.com/lyzr/formengine/common/logger"
)

func newMemoryCache(t *testing.T) *cache.MemoryCache {
	t.Helper()
	return cache.NewMemoryCache(logger.New("error", "json"))
}

func TestMemoryCache_SetThenGetRoundTrips(t *testing.T) {
	c := newMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "journey:abc", []byte("compiled-blob"), time.Hour))

	value, ok, err := c.Get(ctx, "journey:abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("compiled-blob"), value)
}

func TestMemoryCache_GetMissingKeyReturnsFalse(t *testing.T) {
	c := newMemoryCache(t)
	_, ok, err := c.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_ExpiredEntryIsNotReturned(t *testing.T) {
	c := newMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short-lived", []byte("x"), time.Nanosecond))
	time.Sleep(time.Millisecond)

	_, ok, err := c.Get(ctx, "short-lived")
	require.NoError(t, err)
	assert.False(t, ok, "an entry past its TTL must not be returned even before the janitor sweeps it")
}

func TestMemoryCache_DeleteRemovesEntry(t *testing.T) {
	c := newMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Hour))
	require.NoError(t, c.Delete(ctx, "k"))

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_StatsReportsEntryCount(t *testing.T) {
	c := newMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Hour))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Hour))

	stats := c.Stats()
	assert.Equal(t, 2, stats["entries"])
	assert.Equal(t, "memory", stats["type"])
}

func TestMemoryCache_CloseClearsData(t *testing.T) {
	c := newMemoryCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Hour))

	require.NoError(t, c.Close())

	stats := c.Stats()
	assert.Equal(t, 0, stats["entries"])
}
