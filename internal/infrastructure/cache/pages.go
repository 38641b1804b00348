package cache

import (
	"sync"
	"time"

	"github.com/shoprank/backend/internal/domain"
)

// pageEntry is a single cached search page with expiration.
type pageEntry struct {
	page       *domain.SearchPage
	expiration time.Time
}

// PageCache is a thread-safe in-memory cache for upstream search pages with
// TTL support. It exists to dedupe page fetches when one run looks up the
// same keyword for several products; the TTL is kept short so rank data
// stays fresh across runs.
type PageCache struct {
	data  map[string]pageEntry
	ttl   time.Duration
	mutex sync.RWMutex
}

// NewPageCache creates a page cache with the given TTL.
func NewPageCache(ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	c := &PageCache{
		data: make(map[string]pageEntry),
		ttl:  ttl,
	}

	// Cleanup goroutine removes expired entries periodically.
	go c.cleanupExpired()

	return c
}

// Get retrieves a cached page, or nil on miss or expiry.
func (c *PageCache) Get(key string) *domain.SearchPage {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.data[key]
	if !exists {
		return nil
	}
	if time.Now().After(entry.expiration) {
		return nil
	}
	return entry.page
}

// Set stores a page under the cache's TTL.
func (c *PageCache) Set(key string, page *domain.SearchPage) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = pageEntry{
		page:       page,
		expiration: time.Now().Add(c.ttl),
	}
}

// Size returns the current number of cached pages (for debugging/monitoring).
func (c *PageCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all cached pages.
func (c *PageCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]pageEntry)
}

// cleanupExpired removes expired entries from the cache periodically.
func (c *PageCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for key, entry := range c.data {
			if now.After(entry.expiration) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}
