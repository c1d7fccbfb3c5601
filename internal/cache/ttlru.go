package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// TTLCache is a capped, per-entry-TTL cache used for HTTP sessions
// (spec.md §4.8: "Cached in a TTL-LRU (cap 50, TTL 24 h)") and DB
// schema snapshots (spec.md §4.9: TTL default 300s). Capacity is
// enforced on Set by evicting the single oldest entry once the cap is
// reached — go-cache itself has no capacity bound, so this wrapper
// adds the "LRU" half of "TTL-LRU".
type TTLCache[V any] struct {
	inner *gocache.Cache
	cap   int
	ttl   time.Duration

	order []string // insertion order, for capacity eviction
}

// NewTTLCache creates a TTL-LRU with the given capacity and default TTL.
// A background sweep purges expired entries every ttl/2 (min 1 minute).
func NewTTLCache[V any](capacity int, ttl time.Duration) *TTLCache[V] {
	cleanup := ttl / 2
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &TTLCache[V]{
		inner: gocache.New(ttl, cleanup),
		cap:   capacity,
		ttl:   ttl,
	}
}

// Get returns the cached value and whether it was present and unexpired.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	var zero V
	v, ok := c.inner.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(V)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Set inserts or refreshes key with the cache's default TTL, evicting
// the oldest entry first if at capacity.
func (c *TTLCache[V]) Set(key string, value V) {
	if _, exists := c.inner.Get(key); !exists && c.cap > 0 && len(c.order) >= c.cap {
		oldest := c.order[0]
		c.order = c.order[1:]
		c.inner.Delete(oldest)
	}
	if _, exists := c.inner.Get(key); !exists {
		c.order = append(c.order, key)
	}
	c.inner.Set(key, value, c.ttl)
}

// Delete removes key immediately.
func (c *TTLCache[V]) Delete(key string) {
	c.inner.Delete(key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of stored entries, including expired entries
// the cache has not yet cleaned up.
func (c *TTLCache[V]) Len() int {
	return c.inner.ItemCount()
}
