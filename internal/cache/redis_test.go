package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duetapp/duet-bot/internal/cache"
)

func setupCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := &cache.RedisCache{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	return c, mr
}

func TestVoteCountMissThenSet(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	_, ok, err := c.GetVoteCount(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetVoteCount(ctx, "u1", 3))

	count, ok, err := c.GetVoteCount(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(3), count)

	// TTL is set on write
	assert.Greater(t, mr.TTL(c.KeyForVoteCount("u1")), time.Duration(0))
}

func TestAdjustVoteCountOnlyTouchesExistingKeys(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	// a miss stays a miss
	require.NoError(t, c.AdjustVoteCount(ctx, "u1", 1))
	assert.False(t, mr.Exists(c.KeyForVoteCount("u1")))

	require.NoError(t, c.SetVoteCount(ctx, "u1", 2))
	require.NoError(t, c.AdjustVoteCount(ctx, "u1", 1))

	count, ok, err := c.GetVoteCount(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(3), count)
}

func TestInvalidateVoteCount(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	require.NoError(t, c.SetVoteCount(ctx, "u1", 5))
	require.NoError(t, c.InvalidateVoteCount(ctx, "u1"))
	assert.False(t, mr.Exists(c.KeyForVoteCount("u1")))
}
