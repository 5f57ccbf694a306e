package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache 读模型缓存。缓存只用于加速，读写失败都不影响业务结果
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewCache rdb 为空时返回不缓存的实现
func NewCache(rdb *redis.Client) Cache {
	if rdb == nil {
		return nopCache{}
	}
	return &RedisCache{client: rdb, prefix: "prepace:"}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, data, ttl).Err()
}

type nopCache struct{}

func (nopCache) Get(context.Context, string, interface{}) (bool, error) { return false, nil }

func (nopCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }
