package cache

import (
	"sync"
	"time"
)

type urlEntry struct {
	URL        string
	ExpiryTime time.Time
}

// URLCache holds presigned URLs until shortly before they expire.
type URLCache struct {
	cache map[string]urlEntry
	mutex sync.RWMutex
	now   func() time.Time
}

func NewURLCache() *URLCache {
	return &URLCache{
		cache: make(map[string]urlEntry),
		now:   time.Now,
	}
}

func (c *URLCache) Get(key string) (string, bool) {
	c.mutex.RLock()
	entry, found := c.cache[key]
	c.mutex.RUnlock()

	if found && c.now().Before(entry.ExpiryTime) {
		return entry.URL, true
	}

	return "", false
}

func (c *URLCache) Set(key string, url string, expiry time.Time) {
	c.mutex.Lock()
	c.cache[key] = urlEntry{
		URL:        url,
		ExpiryTime: expiry,
	}
	c.mutex.Unlock()
}

// Clear drops expired entries.
func (c *URLCache) Clear() {
	now := c.now()
	c.mutex.Lock()
	for key, entry := range c.cache {
		if now.After(entry.ExpiryTime) {
			delete(c.cache, key)
		}
	}
	c.mutex.Unlock()
}

func (c *URLCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.cache)
}
