package cache

import (
	"sync"
)

// Cache is a thread-safe, generic key/value store. It backs the shared
// run context threaded through a task tree: earlier siblings publish
// facts that later siblings' predicates read, so every access must be
// safe under concurrent groups.
type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	store map[K]V
}

// NewCache creates an empty Cache.
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		store: make(map[K]V),
	}
}

// Set adds or replaces the value for k.
func (c *Cache[K, V]) Set(k K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[k] = v
}

// Get retrieves the value for k, reporting whether it was present.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.store[k]
	return v, ok
}

// GetOrSet returns the existing value for k if present; otherwise it
// stores v and returns it. The second result is true when the value was
// loaded rather than stored.
func (c *Cache[K, V]) GetOrSet(k K, v V) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.store[k]; ok {
		return existing, true
	}
	c.store[k] = v
	return v, false
}

// Delete removes the value for k, if any.
func (c *Cache[K, V]) Delete(k K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, k)
}

// Range calls f for each key/value pair until f returns false.
// Iteration order is not guaranteed. f must not call back into the cache.
func (c *Cache[K, V]) Range(f func(key K, value V) bool) {
	c.mu.RLock()
	snapshot := make(map[K]V, len(c.store))
	for k, v := range c.store {
		snapshot[k] = v
	}
	c.mu.RUnlock()

	for k, v := range snapshot {
		if !f(k, v) {
			return
		}
	}
}

// Clean removes all entries.
func (c *Cache[K, V]) Clean() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[K]V)
}

// Len returns the current number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
