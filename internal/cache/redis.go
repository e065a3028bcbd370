package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const clickKeyPrefix = "pb:click:"

// Connect initializes a Redis client from a URL or host:port address.
func Connect(addr string) (*redis.Client, error) {
	if strings.HasPrefix(addr, "redis://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: addr}), nil
}

type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (r *RedisCache) Get(ctx context.Context, token string) (*CachedClick, error) {
	raw, err := r.rdb.Get(ctx, clickKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var c CachedClick
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *RedisCache) Set(ctx context.Context, token string, c *CachedClick, ttl time.Duration) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, clickKeyPrefix+token, raw, ttl).Err()
}

func (r *RedisCache) Delete(ctx context.Context, token string) error {
	return r.rdb.Del(ctx, clickKeyPrefix+token).Err()
}
