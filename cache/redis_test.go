package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T, opts ...RedisOption) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedisCache(mr.Addr(), "", 0, opts...)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t)

	_, ok, err := c.Get(ctx, "https://bi/wsdl")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "https://bi/wsdl", []byte("<definitions/>")))

	got, ok, err := c.Get(ctx, "https://bi/wsdl")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("<definitions/>"), got)

	assert.True(t, mr.Exists("obiee:cache:https://bi/wsdl"))
	assert.Equal(t, DefaultTTL, mr.TTL("obiee:cache:https://bi/wsdl"))
}

func TestRedisCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t, WithRedisTTL(time.Minute), WithRedisPrefix("test:"))

	require.NoError(t, c.Set(ctx, "k", []byte("v")))
	assert.True(t, mr.Exists("test:k"))

	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_ServerDown(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t)
	mr.Close()

	_, _, err := c.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, c.Set(ctx, "k", []byte("v")))
}
