// Package cache provides a generic, thread-safe LRU cache with per-entry expiration,
// built on hashicorp/golang-lru's expirable LRU.
//
// Entries expire a fixed time after insertion. Get never returns an expired entry,
// so callers do not need their own freshness checks:
//
//	responses := cache.NewTTLCache[string, []byte](512, 30*time.Second)
//
//	if body, ok := responses.Get("GET:https://api.example.com/restaurants?page=1"); ok {
//		return body, nil
//	}
//
//	body, err := fetch(ctx)
//	if err != nil {
//		return nil, err
//	}
//	responses.Put(key, body)
//
// # Pattern Invalidation
//
// RemoveFunc drops every entry whose key matches a predicate. The gateway uses it
// to invalidate a whole resource family after a write:
//
//	removed := responses.RemoveFunc(func(key string) bool {
//		return strings.Contains(key, "/restaurants")
//	})
//
// # Capacity
//
// When capacity is reached the least recently used entry is evicted. A capacity of
// zero disables the bound. NewTTLCacheWithEvict registers a callback for removals.
package cache
