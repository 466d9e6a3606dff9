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

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisCache(t *testing.T) {
	mr, client := newRedis(t)
	c := NewRedisCache(client)
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	type profile struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, c.SetJSON(ctx, "profile", profile{ID: 1, Name: "alice"}, time.Minute))
	var got profile
	require.NoError(t, c.GetJSON(ctx, "profile", &got))
	assert.Equal(t, profile{ID: 1, Name: "alice"}, got)
	assert.Equal(t, time.Minute, mr.TTL("profile"))

	require.NoError(t, c.SetJSON(ctx, "other", profile{ID: 2}, time.Minute))
	require.NoError(t, c.Delete(ctx, "other"))
	require.NoError(t, c.Delete(ctx))
	assert.False(t, mr.Exists("other"))
	_, err = c.Get(ctx, "other")
	assert.ErrorIs(t, err, ErrCacheMiss)

	mr.FastForward(2 * time.Minute)
	_, err = c.Get(ctx, "profile")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestBloomFilterInMemory(t *testing.T) {
	bf := NewRedisBloomFilter(nil, BloomFilterUserKey, 1000, 0.01)
	ctx := context.Background()

	require.NoError(t, bf.BatchAdd(ctx, []string{"1", "2"}))
	require.NoError(t, bf.Add(ctx, "3"))
	for _, id := range []string{"1", "2", "3"} {
		ok, err := bf.Test(ctx, id)
		require.NoError(t, err)
		assert.True(t, ok, id)
	}

	// 未连接Redis时持久化为空操作
	require.NoError(t, bf.SaveToRedis(ctx))
	require.NoError(t, bf.LoadFromRedis(ctx))

	ok, err := bf.Test(ctx, "4")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBloomFilterPersistence(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()

	bf := NewRedisBloomFilter(client, BloomFilterUserKey, 1000, 0.01)
	require.NoError(t, bf.Add(ctx, "42"))
	require.NoError(t, bf.SaveToRedis(ctx))
	assert.True(t, mr.Exists(BloomFilterUserKey))

	restored := NewRedisBloomFilter(client, BloomFilterUserKey, 1000, 0.01)
	require.NoError(t, restored.Add(ctx, "7"))
	require.NoError(t, restored.LoadFromRedis(ctx))
	for _, id := range []string{"42", "7"} {
		ok, err := restored.Test(ctx, id)
		require.NoError(t, err)
		assert.True(t, ok, id)
	}

	// Redis中没有数据时保留当前过滤器
	mr.Del(BloomFilterUserKey)
	empty := NewRedisBloomFilter(client, BloomFilterUserKey, 1000, 0.01)
	require.NoError(t, empty.Add(ctx, "9"))
	require.NoError(t, empty.LoadFromRedis(ctx))
	ok, err := empty.Test(ctx, "9")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestManagerWithoutRedis(t *testing.T) {
	m := NewManager(nil)
	ctx := context.Background()

	assert.Nil(t, m.GetCache())
	require.NoError(t, m.GetUserFilter().Add(ctx, "1"))
	require.NoError(t, m.SaveBloomFilters(ctx))
	require.NoError(t, m.Close(ctx))
}
