package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCacheFromClient(client), mr
}

func TestRedisCache_SetAndGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "market:snapshot:EUR/USD", `{"pairs":[]}`, time.Minute))

	val, err := c.Get(ctx, "market:snapshot:EUR/USD")
	require.NoError(t, err)
	assert.Equal(t, `{"pairs":[]}`, val)
}

func TestRedisCache_MissingKeyIsNotAnError(t *testing.T) {
	c, _ := newTestCache(t)

	val, err := c.Get(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestRedisCache_Delete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", "value", time.Minute))
	require.NoError(t, c.Delete(ctx, "key"))

	val, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestRedisCache_Expiration(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", "value", 30*time.Second))

	mr.FastForward(31 * time.Second)

	val, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestNewRedisCache_ConnectFailure(t *testing.T) {
	_, err := NewRedisCache(context.Background(), RedisConfig{Address: "127.0.0.1:1"})
	require.Error(t, err)
}
