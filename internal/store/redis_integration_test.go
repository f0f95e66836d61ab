//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/link-shortener/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

func TestRedisCacheRepositoryIntegration(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr: getRedisAddr(),
	})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	const prefix = "cachetest-"

	cleanup := func() {
		keys, _ := client.Keys(ctx, "link:"+prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
	}
	cleanup()
	t.Cleanup(cleanup)

	t.Run("satisfies the repository contract", func(t *testing.T) {
		repo := store.NewRedisCacheRepository(store.NewMemoryStore(), client, time.Minute)

		testRepository(t, repo, prefix)
	})

	t.Run("serves reads from cache", func(t *testing.T) {
		backing := store.NewMemoryStore()
		repo := store.NewRedisCacheRepository(backing, client, time.Minute)

		link := newLink(prefix+"cached", time.Now())
		require.NoError(t, repo.Create(ctx, link))

		// Remove from the backing store only; the cached copy must still be served.
		require.NoError(t, backing.Delete(ctx, link.ID))

		got, err := repo.Get(ctx, link.ID)
		require.NoError(t, err)
		assert.Equal(t, link.Target, got.Target)
		assert.True(t, link.AddedAt.Equal(got.AddedAt))
	})

	t.Run("sets ttl on cached entries", func(t *testing.T) {
		repo := store.NewRedisCacheRepository(store.NewMemoryStore(), client, time.Minute)

		link := newLink(prefix+"ttl", time.Now())
		require.NoError(t, repo.Create(ctx, link))

		ttl, err := client.TTL(ctx, "link:"+link.ID).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})
}
