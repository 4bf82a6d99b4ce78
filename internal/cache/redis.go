package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/duetapp/duet-bot/internal/config"
)

// VoteCountTTL bounds how long a cached positive-vote counter lives
// without being touched.
const VoteCountTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes the Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// KeyForVoteCount generates the Redis key for a user's positive-vote counter.
func (c *RedisCache) KeyForVoteCount(messengerID string) string {
	return fmt.Sprintf("votes:count:%s", messengerID)
}

// GetVoteCount returns the cached positive-vote count for a user.
// A cache miss returns (0, false, nil); the TTL is refreshed on hit.
func (c *RedisCache) GetVoteCount(ctx context.Context, messengerID string) (int64, bool, error) {
	key := c.KeyForVoteCount(messengerID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, err
	}

	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, VoteCountTTL).Err()
	return n, true, nil
}

// SetVoteCount stores a freshly computed counter with the standard TTL.
func (c *RedisCache) SetVoteCount(ctx context.Context, messengerID string, count int64) error {
	return c.Client.Set(ctx, c.KeyForVoteCount(messengerID), count, VoteCountTTL).Err()
}

// AdjustVoteCount shifts a user's counter after a vote (+1 for cute,
// -1 otherwise) and refreshes its TTL. Only counters that already exist
// are touched; a miss stays a miss until the next DB-backed read fills it.
func (c *RedisCache) AdjustVoteCount(ctx context.Context, messengerID string, delta int64) error {
	key := c.KeyForVoteCount(messengerID)

	exists, err := c.Client.Exists(ctx, key).Result()
	if err != nil || exists == 0 {
		return err
	}

	if err := c.Client.IncrBy(ctx, key, delta).Err(); err != nil {
		return err
	}
	return c.Client.Expire(ctx, key, VoteCountTTL).Err()
}

// InvalidateVoteCount drops a user's counter so the next read recomputes
// it from the database. Used when a re-vote makes the delta ambiguous.
func (c *RedisCache) InvalidateVoteCount(ctx context.Context, messengerID string) error {
	return c.Client.Del(ctx, c.KeyForVoteCount(messengerID)).Err()
}
