// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package redis

import (
	stdctx "context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by [Cache.GetJSON] when the key does not exist.
var ErrCacheMiss = errors.New("redis: cache miss")

// Cache stores JSON documents under plain string keys.
type Cache struct {
	client redis.UniversalClient
}

// NewCache wraps an existing client.
func NewCache(client redis.UniversalClient) *Cache {
	return &Cache{client: client}
}

// GetJSON decodes the value stored under key into dest.
func (cache *Cache) GetJSON(context stdctx.Context, key string, dest any) error {
	raw, err := cache.client.Get(context, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis: get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("redis: decode %s: %w", key, err)
	}
	return nil
}

// SetJSON stores value under key. A zero ttl keeps the key until deleted.
func (cache *Cache) SetJSON(context stdctx.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis: encode %s: %w", key, err)
	}

	if err := cache.client.Set(context, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

// Delete removes keys. Missing keys are not an error.
func (cache *Cache) Delete(context stdctx.Context, keys ...string) error {
	if err := cache.client.Del(context, keys...).Err(); err != nil {
		return fmt.Errorf("redis: delete: %w", err)
	}
	return nil
}

// Counter returns the integer stored under key, or 0 when the key does not exist.
func (cache *Cache) Counter(context stdctx.Context, key string) (int64, error) {
	value, err := cache.client.Get(context, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis: get counter %s: %w", key, err)
	}
	return value, nil
}

// Increment atomically adds one to the counter under key and returns the new value.
func (cache *Cache) Increment(context stdctx.Context, key string) (int64, error) {
	value, err := cache.client.Incr(context, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: incr %s: %w", key, err)
	}
	return value, nil
}
