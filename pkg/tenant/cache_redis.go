package tenant

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCache shares resolved tenants across instances, so a suspension
// or plan change propagates as soon as the cached entry is deleted.
type redisCache struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisCache creates a Redis-backed tenant cache. The prefix
// namespaces keys, defaulting to "tenant:".
func NewRedisCache(client redis.UniversalClient, keyPrefix string) Cache {
	if keyPrefix == "" {
		keyPrefix = "tenant:"
	}
	return &redisCache{client: client, keyPrefix: keyPrefix}
}

func (c *redisCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	payload, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var t Tenant
	if err := json.Unmarshal(payload, &t); err != nil {
		// Stale or corrupt entry, drop it and fall back to the provider.
		c.client.Del(ctx, c.keyPrefix+key)
		return nil, false
	}
	return &t, true
}

func (c *redisCache) Set(ctx context.Context, key string, tenant *Tenant, ttl time.Duration) {
	payload, err := json.Marshal(tenant)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.keyPrefix+key, payload, ttl)
}

func (c *redisCache) Delete(ctx context.Context, key string) {
	c.client.Del(ctx, c.keyPrefix+key)
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
