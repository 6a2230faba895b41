package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joshua-takyi/tripbay/internal/observability"
)

// Cache is a JSON read-through cache for hotel listings.
type Cache struct{ c *redis.Client }

func NewCache(c *redis.Client) *Cache {
	return &Cache{c: c}
}

func (r *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		observability.ObserveCache("hotels", "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	observability.ObserveCache("hotels", "hit")
	return true, json.Unmarshal(v, dst)
}

func (r *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, _ := json.Marshal(v)
	observability.ObserveCache("hotels", "set")
	return r.c.Set(ctx, key, b, time.Duration(ttlSec)*time.Second).Err()
}

func (r *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache("hotels", "del")
	return r.c.Del(ctx, key).Err()
}
