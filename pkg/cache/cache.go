// Package cache provides a small TTL key/value cache used to shortcut hot
// persona reads. Two backends exist: an in-process map and Redis.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache stores short-lived JSON payloads. All operations are best effort:
// a failing cache must never fail the request it was shading.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

type item struct {
	value      string
	expiration int64
}

func (it item) expired() bool {
	return it.expiration > 0 && time.Now().UnixNano() > it.expiration
}

// MemoryCache is a thread-safe in-process cache with lazy plus periodic
// expiry.
type MemoryCache struct {
	mu              sync.RWMutex
	items           map[string]item
	cleanupInterval time.Duration
}

// NewMemoryCache builds a memory cache. When cleanupInterval > 0 a janitor
// goroutine purges expired entries on that period.
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	c := &MemoryCache{
		items:           make(map[string]item),
		cleanupInterval: cleanupInterval,
	}
	if cleanupInterval > 0 {
		go c.janitor()
	}
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, ok := c.items[key]
	if !ok || it.expired() {
		return "", false
	}
	return it.value, true
}

func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) {
	var exp int64
	if ttl > 0 {
		exp = time.Now().Add(ttl).UnixNano()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = item{value: value, expiration: exp}
}

func (c *MemoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Count returns the number of entries, including not-yet-purged expired ones.
func (c *MemoryCache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *MemoryCache) janitor() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now().UnixNano()
		c.mu.Lock()
		for k, it := range c.items {
			if it.expiration > 0 && now > it.expiration {
				delete(c.items, k)
			}
		}
		c.mu.Unlock()
	}
}
