package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string   `json:"name"`
	Count int64    `json:"count"`
	Min   *float64 `json:"min"`
}

func exerciseCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()
	lo := 2.5

	t.Run("miss", func(t *testing.T) {
		var got entry
		assert.ErrorIs(t, c.Get(ctx, "test:absent", &got), ErrMiss)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "test:key1", entry{Name: "color", Count: 3, Min: &lo}, time.Minute))
		var got entry
		require.NoError(t, c.Get(ctx, "test:key1", &got))
		assert.Equal(t, "color", got.Name)
		assert.Equal(t, int64(3), got.Count)
		require.NotNil(t, got.Min)
		assert.Equal(t, 2.5, *got.Min)
	})

	t.Run("del", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "test:key2", entry{Name: "x"}, time.Minute))
		require.NoError(t, c.Del(ctx, "test:key2", "test:never"))
		var got entry
		assert.ErrorIs(t, c.Get(ctx, "test:key2", &got), ErrMiss)
	})

	assert.NoError(t, c.Ping(ctx))
}

func TestMemoryCache(t *testing.T) {
	exerciseCache(t, NewMemoryCache())
}

func TestMemoryCache_Expiration(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", entry{Name: "v"}, time.Second))
	var got entry
	require.NoError(t, c.Get(ctx, "k", &got))

	now = now.Add(time.Second)
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrMiss)
}

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", entry{Name: "v"}, time.Minute))
	var got entry
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrMiss)
}

func TestRedisCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis test in short mode")
	}
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("skipping redis test, cannot connect to %s: %v", addr, err)
	}

	c := NewRedisCache(client, "catalog-test")
	t.Cleanup(func() { _ = c.Del(context.Background(), "test:key1", "test:key2") })
	exerciseCache(t, c)
}
