// Package cache provides the bounded in-memory primitives spec.md §2
// calls out as their own component: a capped LRU for the project
// cache, a TTL-LRU for HTTP sessions and DB schema snapshots, and a
// lazily-initialized per-path lock map for serializing disk writes.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// ProjectLRU is a bounded cache of *V keyed by project ID, with an
// eviction hook so the caller can prune anything keyed off an evicted
// entry (spec.md §4.1: "locks are lazily created and pruned when the
// cached project is evicted").
type ProjectLRU[V any] struct {
	inner *lru.Cache[string, V]
}

// NewProjectLRU creates a bounded cache of the given capacity. onEvict,
// if non-nil, runs synchronously whenever an entry is evicted (by
// capacity pressure or explicit Remove).
func NewProjectLRU[V any](capacity int, onEvict func(key string, value V)) (*ProjectLRU[V], error) {
	var cb func(string, V)
	if onEvict != nil {
		cb = onEvict
	}
	inner, err := lru.NewWithEvict[string, V](capacity, cb)
	if err != nil {
		return nil, err
	}
	return &ProjectLRU[V]{inner: inner}, nil
}

// Get returns the cached value and whether it was present.
func (c *ProjectLRU[V]) Get(key string) (V, bool) {
	return c.inner.Get(key)
}

// Add inserts or updates key, possibly evicting the least-recently-used entry.
func (c *ProjectLRU[V]) Add(key string, value V) {
	c.inner.Add(key, value)
}

// Remove evicts key if present, running the eviction callback.
func (c *ProjectLRU[V]) Remove(key string) {
	c.inner.Remove(key)
}

// Keys returns every cached key, least-recently-used first.
func (c *ProjectLRU[V]) Keys() []string {
	return c.inner.Keys()
}

// Len returns the number of cached entries.
func (c *ProjectLRU[V]) Len() int {
	return c.inner.Len()
}
