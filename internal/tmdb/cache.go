package tmdb

import (
	"sync"
	"time"
)

type cacheEntry[V any] struct {
	value   V
	expires time.Time
}

type cache[V any] struct {
	mu      sync.RWMutex
	entries map[int64]cacheEntry[V]
	ttl     time.Duration
}

func newCache[V any](ttl time.Duration) *cache[V] {
	return &cache[V]{
		entries: make(map[int64]cacheEntry[V]),
		ttl:     ttl,
	}
}

func (c *cache[V]) get(id int64) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero V
	entry, ok := c.entries[id]
	if !ok {
		return zero, false
	}
	if time.Now().After(entry.expires) {
		return zero, false
	}
	return entry.value, true
}

func (c *cache[V]) set(id int64, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[id] = cacheEntry[V]{
		value:   v,
		expires: time.Now().Add(c.ttl),
	}
}
