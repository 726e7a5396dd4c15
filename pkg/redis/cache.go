package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// JSONCache stores JSON-encoded values under a key prefix
type JSONCache struct {
	client *redis.Client
	prefix string
}

// NewJSONCache creates a cache on c. A nil client yields a cache that always misses.
func NewJSONCache(c *redis.Client, prefix string) *JSONCache {
	return &JSONCache{client: c, prefix: prefix}
}

// Enabled reports whether the cache is backed by a client
func (c *JSONCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Get decodes the cached value into dest. found is false on a miss.
func (c *JSONCache) Get(ctx context.Context, key string, dest interface{}) (found bool, err error) {
	if !c.Enabled() {
		return false, nil
	}
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores value for ttl
func (c *JSONCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, raw, ttl).Err()
}

// Delete drops key from the cache
func (c *JSONCache) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Del(ctx, c.prefix+key).Err()
}
