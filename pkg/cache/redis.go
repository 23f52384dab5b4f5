package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"ai-persona-chat/backend/pkg/logger"
)

// RedisCache backs the Cache interface with a Redis instance so persona
// reads stay warm across process restarts.
type RedisCache struct {
	client *redis.Client
	log    *logger.Logger
}

// NewRedisCache dials addr with default options. Connection problems surface
// lazily on first use; cache operations only log them.
func NewRedisCache(addr string, log *logger.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{client: client, log: log}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("redis get failed", "key", key, "error", err.Error())
		}
		return "", false
	}
	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.log.Warn("redis set failed", "key", key, "error", err.Error())
	}
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Warn("redis delete failed", "key", key, "error", err.Error())
	}
}
