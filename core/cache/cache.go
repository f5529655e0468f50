package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// TTLCache is a size-bounded LRU cache whose entries expire a fixed duration after insertion.
// An expired entry is never returned by Get, even before background cleanup removes it.
// All methods are safe for concurrent use.
type TTLCache[K comparable, V any] struct {
	lru *expirable.LRU[K, V]
	ttl time.Duration
}

// NewTTLCache creates a cache holding at most capacity entries (0 means unbounded)
// that expire ttl after they are stored. Overwriting a key restarts its lifetime.
func NewTTLCache[K comparable, V any](capacity int, ttl time.Duration) *TTLCache[K, V] {
	return NewTTLCacheWithEvict[K, V](capacity, ttl, nil)
}

// NewTTLCacheWithEvict is NewTTLCache with a callback invoked for every removed entry,
// whether it expired, was evicted for capacity, or was removed explicitly.
func NewTTLCacheWithEvict[K comparable, V any](capacity int, ttl time.Duration, onEvict func(K, V)) *TTLCache[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	return &TTLCache[K, V]{
		lru: expirable.NewLRU[K, V](capacity, onEvict, ttl),
		ttl: ttl,
	}
}

// Get returns the live value for key.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	return c.lru.Get(key)
}

// Put stores value under key with a fresh lifetime.
func (c *TTLCache[K, V]) Put(key K, value V) {
	c.lru.Add(key, value)
}

// Remove deletes key and reports whether it was present.
func (c *TTLCache[K, V]) Remove(key K) bool {
	return c.lru.Remove(key)
}

// RemoveFunc deletes every key for which match returns true and returns how many were removed.
func (c *TTLCache[K, V]) RemoveFunc(match func(K) bool) int {
	removed := 0
	for _, key := range c.lru.Keys() {
		if match(key) && c.lru.Remove(key) {
			removed++
		}
	}
	return removed
}

// Clear removes all entries.
func (c *TTLCache[K, V]) Clear() {
	c.lru.Purge()
}

// Len returns the number of stored entries, which may include expired ones awaiting cleanup.
func (c *TTLCache[K, V]) Len() int {
	return c.lru.Len()
}

// Keys returns the stored keys from oldest to newest.
func (c *TTLCache[K, V]) Keys() []K {
	return c.lru.Keys()
}

// TTL returns the configured entry lifetime.
func (c *TTLCache[K, V]) TTL() time.Duration {
	return c.ttl
}
