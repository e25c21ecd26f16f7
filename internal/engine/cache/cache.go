// Package cache holds the archives produced during a single run, keyed by dependency name.
package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ProduceFunc produces the archive for a dependency and returns its absolute path.
type ProduceFunc func(ctx context.Context) (string, error)

// Cache maps dependency names to archive paths. It lives for one run and is never persisted.
// Concurrent requests for the same name are collapsed into a single production.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string
	group   singleflight.Group
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Get returns the archive path stored for name.
func (c *Cache) Get(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	path, ok := c.entries[name]
	return path, ok
}

// Put stores the archive path for name. An existing entry is kept.
func (c *Cache) Put(name, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[name]; !ok {
		c.entries[name] = path
	}
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetOrProduce returns the stored archive for name, or runs produce and stores its result.
// hit reports whether the path came from the cache or from another caller's production.
// Failed productions are not stored; every waiter receives the error.
func (c *Cache) GetOrProduce(ctx context.Context, name string, produce ProduceFunc) (path string, hit bool, err error) {
	if path, ok := c.Get(name); ok {
		return path, true, nil
	}

	produced := false
	v, err, _ := c.group.Do(name, func() (any, error) {
		if path, ok := c.Get(name); ok {
			return path, nil
		}
		produced = true
		path, err := produce(ctx)
		if err != nil {
			return "", err
		}
		c.Put(name, path)
		return path, nil
	})
	if err != nil {
		return "", false, err
	}

	return v.(string), !produced, nil
}
