package cache

import (
	"sync"
	"time"
)

// entry is a cached presigned URL with its expiry.
type entry struct {
	url      string
	expireAt time.Time
}

// URLCache is a thread-safe in-process cache for presigned download
// URLs, keyed by storage key. Entries are invalidated on Delete when a
// file is removed or its blob replaced.
type URLCache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func NewURLCache() *URLCache {
	return &URLCache{
		entries: make(map[string]entry),
	}
}

// Get returns the cached URL for key if it has not expired.
func (c *URLCache) Get(key string) (string, bool) {
	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()

	if found && time.Now().Before(e.expireAt) {
		return e.url, true
	}

	return "", false
}

func (c *URLCache) Set(key, url string, expireAt time.Time) {
	c.mu.Lock()
	c.entries[key] = entry{url: url, expireAt: expireAt}
	c.mu.Unlock()
}

// Delete drops the entry for key, if any.
func (c *URLCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Purge removes expired entries. Callers run it periodically.
func (c *URLCache) Purge() {
	now := time.Now()

	c.mu.Lock()
	for key, e := range c.entries {
		if now.After(e.expireAt) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}
