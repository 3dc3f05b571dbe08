package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := New(true)
	defer c.Close()
	ctx := context.Background()

	_, _, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	etag := c.Set(ctx, "k", []byte(`{"a":1}`), time.Minute)
	data, got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(data))
	assert.Equal(t, etag, got)
	assert.Equal(t, ComputeETag([]byte(`{"a":1}`)), etag)
}

func TestCacheExpiryAndEvict(t *testing.T) {
	c := New(true)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "old", []byte("x"), -time.Second)
	c.Set(ctx, "new", []byte("y"), time.Minute)
	_, _, ok := c.Get(ctx, "old")
	assert.False(t, ok)

	stats := c.Stats(ctx)
	assert.Equal(t, 2, stats["total_keys"])
	assert.Equal(t, 1, stats["expired_keys"])

	c.evict()
	assert.Equal(t, 1, c.Stats(ctx)["total_keys"])
}

func TestDisabledCache(t *testing.T) {
	c := New(false)
	ctx := context.Background()
	etag := c.Set(ctx, "k", []byte("x"), time.Minute)
	assert.NotEmpty(t, etag)
	_, _, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestETagMatch(t *testing.T) {
	etag := ComputeETag([]byte("body"))
	assert.True(t, CheckETagMatch(etag, etag))
	assert.True(t, CheckETagMatch("*", etag))
	assert.False(t, CheckETagMatch("", etag))
	assert.False(t, CheckETagMatch(`W/"0000"`, etag))
}

func TestKeyIncludesVersion(t *testing.T) {
	assert.NotEqual(t, Key(1, "/rankings/hitters"), Key(2, "/rankings/hitters"))
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "not-a-url", slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
