// Package cache provides a small TTL cache used to avoid re-reading
// slow-changing rows, such as the driver roster, on every request.
package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// TTL is a concurrency-safe map cache whose entries expire after a fixed
// duration. Expired entries are dropped lazily on Get.
type TTL[T any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]entry[T]
}

// NewTTL creates a cache whose entries live for ttl after each Set.
func NewTTL[T any](ttl time.Duration) *TTL[T] {
	return &TTL[T]{
		ttl:   ttl,
		items: make(map[string]entry[T]),
	}
}

// Get returns the cached value for key, if present and not expired.
func (c *TTL[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.items[key]
	if !ok {
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.items, key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, replacing any previous entry.
func (c *TTL[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry[T]{value: value, expiresAt: time.Now().Add(c.ttl)}
}

// Invalidate removes key from the cache.
func (c *TTL[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Size returns the number of entries, including any not yet swept.
func (c *TTL[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
