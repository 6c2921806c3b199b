package tenant

import (
	"context"
	"sync"
	"time"
)

// Cache stores resolved tenant records so the middleware does not hit the
// database on every request.
type Cache interface {
	Get(ctx context.Context, key string) (*Tenant, bool)
	Set(ctx context.Context, key string, tenant *Tenant, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Close() error
}

type memoryCache struct {
	mu     sync.RWMutex
	items  map[string]memoryCacheItem
	stop   chan struct{}
	closed sync.Once
}

type memoryCacheItem struct {
	tenant    *Tenant
	expiresAt time.Time
}

// NewInMemoryCache creates a TTL cache with a background janitor. Good
// enough for a single process; use NewRedisCache when several instances
// must share invalidations.
func NewInMemoryCache() Cache {
	c := &memoryCache{
		items: make(map[string]memoryCacheItem),
		stop:  make(chan struct{}),
	}
	go c.janitor()
	return c
}

func (c *memoryCache) Get(_ context.Context, key string) (*Tenant, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(item.expiresAt) {
		return nil, false
	}
	return item.tenant, true
}

func (c *memoryCache) Set(_ context.Context, key string, tenant *Tenant, ttl time.Duration) {
	c.mu.Lock()
	c.items[key] = memoryCacheItem{tenant: tenant, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

func (c *memoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

func (c *memoryCache) Close() error {
	c.closed.Do(func() { close(c.stop) })
	return nil
}

func (c *memoryCache) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, item := range c.items {
				if now.After(item.expiresAt) {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}

// noopCache disables caching, useful in tests.
type noopCache struct{}

// NewNoopCache creates a cache that never stores anything.
func NewNoopCache() Cache { return noopCache{} }

func (noopCache) Get(context.Context, string) (*Tenant, bool) { return nil, false }

func (noopCache) Set(context.Context, string, *Tenant, time.Duration) {}

func (noopCache) Delete(context.Context, string) {}

func (noopCache) Close() error { return nil }
