package services

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestRedisSessionStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	store := NewRedisSessionStore(rdb)

	token, err := store.Create(ctx, "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, mr.Exists(SessionKeyPrefix+token))
	assert.Equal(t, SessionDuration, mr.TTL(SessionKeyPrefix+token))

	userID, ok, err := store.Validate(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "user-1", userID)

	require.NoError(t, store.Invalidate(ctx, token))
	_, ok, err = store.Validate(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(UserSessionKeyPrefix+"user-1"))
}

func TestRedisSessionStore_NewLoginReplacesOldSession(t *testing.T) {
	ctx := context.Background()
	_, rdb := newTestRedis(t)
	store := NewRedisSessionStore(rdb)

	first, err := store.Create(ctx, "user-1")
	require.NoError(t, err)
	second, err := store.Create(ctx, "user-1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, ok, err := store.Validate(ctx, first)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.Validate(ctx, second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisSessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	store := NewRedisSessionStore(rdb)

	token, err := store.Create(ctx, "user-1")
	require.NoError(t, err)

	mr.FastForward(SessionDuration + 1)

	_, ok, err := store.Validate(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSessionStore_EmptyToken(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := NewRedisSessionStore(rdb)

	_, ok, err := store.Validate(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, store.Invalidate(context.Background(), ""))
}

func TestCacheService(t *testing.T) {
	ctx := context.Background()
	_, rdb := newTestRedis(t)
	cache := NewCacheService(rdb)

	var got map[string]int
	hit, err := cache.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "k", map[string]int{"a": 1}, analysisCacheTTL))
	hit, err = cache.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, map[string]int{"a": 1}, got)

	require.NoError(t, cache.Delete(ctx, "k"))
	hit, err = cache.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	assert.Equal(t, "analysis:abc", CacheKey("analysis", "abc"))
}
