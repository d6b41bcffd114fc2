package reminder

import (
	"sync"
	"time"
)

// dedupCache remembers recently reported reminder keys so repeated scans
// inside the window do not notify twice.
type dedupCache struct {
	mu         sync.Mutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]time.Time
}

func newDedupCache(ttl time.Duration, maxEntries int, now func() time.Time) *dedupCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	if now == nil {
		now = time.Now
	}
	return &dedupCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]time.Time),
	}
}

// MarkOnce records key and reports whether this call was the first to do
// so within the ttl.
func (c *dedupCache) MarkOnce(key string) bool {
	if c == nil {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.cleanupLocked(now)

	if expiry, ok := c.entries[key]; ok && now.Before(expiry) {
		return false
	}
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = now.Add(c.ttl)
	return true
}

func (c *dedupCache) cleanupLocked(now time.Time) {
	for key, expiry := range c.entries {
		if !now.Before(expiry) {
			delete(c.entries, key)
		}
	}
}

func (c *dedupCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}
