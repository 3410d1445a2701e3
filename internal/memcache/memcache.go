// Package memcache provides the in-process key/value store shared by the
// econet facade for derived data such as parameter limits and the last
// value written to each parameter.
//
// Entries never expire. The store lives as long as the process.
package memcache

import "sync"

// MemCache is a concurrency-safe map from string keys to arbitrary values
type MemCache struct {
	mu   sync.RWMutex
	data map[string]any
}

// New creates an empty cache
func New() *MemCache {
	return &MemCache{data: make(map[string]any)}
}

// Exists reports whether key has been set
func (c *MemCache) Exists(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.data[key]
	return ok
}

// Get returns the value stored under key
func (c *MemCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	return v, ok
}

// Set stores value under key, replacing any previous value
func (c *MemCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = make(map[string]any)
	}
	c.data[key] = value
}

// Keys returns a snapshot of the stored keys in no particular order
func (c *MemCache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	return keys
}
