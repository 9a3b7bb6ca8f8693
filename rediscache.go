package quizforge

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache implements Cache on a Redis instance so multiple server
// processes can share one response cache. Keys are namespaced by prefix and
// Clear only touches that namespace.
type RedisCache struct {
	rdb    *goredis.Client
	prefix string
	log    *zap.SugaredLogger
}

func NewRedisCache(addr string, log *zap.SugaredLogger) (*RedisCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("%w: redis address is empty", ErrConfig)
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCache{rdb: rdb, prefix: "quizforge:", log: log}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if err == goredis.Nil {
		return nil, false
	}
	if err != nil {
		if c.log != nil {
			c.log.Warnw("redis cache read failed", "error", err)
		}
		return nil, false
	}
	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := c.rdb.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil && c.log != nil {
		c.log.Warnw("redis cache write failed", "error", err)
	}
}

func (c *RedisCache) Clear(ctx context.Context) {
	iter := c.rdb.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil && c.log != nil {
			c.log.Warnw("redis cache delete failed", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil && c.log != nil {
		c.log.Warnw("redis cache scan failed", "error", err)
	}
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
