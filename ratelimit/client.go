package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is the subset of the redis API the limiters use. Both
// *redis.Client and *redis.ClusterClient satisfy it.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Close() error
}

// NewClient connects to a single redis node, or a cluster when more than
// one address is given.
func NewClient(addrs []string, password string, db int) redis.UniversalClient {
	if len(addrs) > 1 {
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    addrs,
			Password: password,
		})
	}
	return redis.NewClient(&redis.Options{
		Addr:         addrs[0],
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// incrWithExpire bumps a counter and starts its window on first use
func incrWithExpire(ctx context.Context, c Client, key string, window time.Duration) (int64, error) {
	cnt, err := c.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if cnt == 1 {
		_ = c.Expire(ctx, key, window).Err()
	}
	return cnt, nil
}
