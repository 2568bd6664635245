package assets

import "sort"

// Cache is a keyed store of loaded assets with hit statistics.
type Cache[V any] struct {
	data map[string]V

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache[V any]() *Cache[V] {
	return &Cache[V]{
		data: make(map[string]V),
	}
}

// Get retrieves an item from cache.
func (c *Cache[V]) Get(key string) (V, bool) {
	v, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Set stores an item in cache.
func (c *Cache[V]) Set(key string, v V) {
	c.data[key] = v
}

// Delete removes an item.
func (c *Cache[V]) Delete(key string) {
	delete(c.data, key)
}

// Keys returns the cached keys, sorted.
func (c *Cache[V]) Keys() []string {
	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of cached items.
func (c *Cache[V]) Len() int {
	return len(c.data)
}

// Clear empties the cache and resets statistics.
func (c *Cache[V]) Clear() {
	c.data = make(map[string]V)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache[V]) Stats() (hits, misses int) {
	return c.hits, c.misses
}
