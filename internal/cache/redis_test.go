package cache_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/straye-as/crm-core/internal/cache"
	"github.com/straye-as/crm-core/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisCache_GetSet(t *testing.T) {
	ctx := context.Background()
	mr, rdb := setupRedis(t)
	c := cache.NewRedisCache(rdb, "crm:")

	require.NoError(t, c.Set(ctx, "pipelines:list", []byte(`[1]`), time.Minute))
	assert.True(t, mr.Exists("crm:pipelines:list"))

	value, ok, err := c.Get(ctx, "pipelines:list")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`[1]`), value)

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, "pipelines:list")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, c.Ping(ctx))
}

func TestRedisCache_DeletePrefix(t *testing.T) {
	ctx := context.Background()

	t.Run("removes matching keys across scan batches", func(t *testing.T) {
		mr, rdb := setupRedis(t)
		c := cache.NewRedisCache(rdb, "crm:")

		for i := 0; i < 250; i++ {
			require.NoError(t, c.Set(ctx, fmt.Sprintf("pipelines:%d", i), []byte("x"), time.Minute))
		}
		require.NoError(t, c.Set(ctx, "clients:1", []byte("x"), time.Minute))
		require.NoError(t, mr.Set("other:pipelines:1", "x"))

		require.NoError(t, c.DeletePrefix(ctx, "pipelines:"))

		assert.Equal(t, []string{"crm:clients:1", "other:pipelines:1"}, mr.Keys())
	})

	t.Run("wildcards in the prefix match literally", func(t *testing.T) {
		mr, rdb := setupRedis(t)
		c := cache.NewRedisCache(rdb, "crm*:")

		require.NoError(t, c.Set(ctx, "pipelines:list", []byte("x"), time.Minute))
		require.NoError(t, mr.Set("crm-eu:pipelines:list", "x"))
		require.NoError(t, mr.Set("crm?:pipelines:list", "x"))

		require.NoError(t, c.DeletePrefix(ctx, "pipelines:"))

		assert.Equal(t, []string{"crm-eu:pipelines:list", "crm?:pipelines:list"}, mr.Keys())
	})
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := cache.NewRedisClient(context.Background(), &config.RedisConfig{Addr: mr.Addr(), DialTimeout: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	assert.NoError(t, rdb.Ping(context.Background()).Err())

	mr.Close()
	_, err = cache.NewRedisClient(context.Background(), &config.RedisConfig{Addr: mr.Addr(), DialTimeout: 1})
	assert.ErrorContains(t, err, "redis ping")
}
