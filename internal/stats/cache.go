package stats

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache holds serialized statistics responses for a short TTL so
// dashboard refreshes do not re-run aggregations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

// RedisCache is the Redis-backed Cache. Failures degrade to cache
// misses; statistics must keep working when Redis is down.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: client, TTL: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.Client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) {
	c.Client.Set(ctx, key, value, c.TTL)
}
