package cache

import (
	"strings"
	"sync"
	"time"
)

const (
	DefaultTTL        = 10 * time.Minute
	DefaultMaxEntries = 100

	sweepInterval = 5 * time.Minute
)

type entry struct {
	value      interface{}
	insertedAt time.Time
	ttl        time.Duration
}

// Cache is a process-wide read-through overlay for the backend store. It never
// originates data: every caller must treat a miss as "go ask the store".
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	maxEntries int
	defaultTTL time.Duration
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

func New() *Cache {
	return NewWithOptions(DefaultMaxEntries, DefaultTTL)
}

func NewWithOptions(maxEntries int, defaultTTL time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}

	c := &Cache{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
		defaultTTL: defaultTTL,
		now:        time.Now,
		stop:       make(chan struct{}),
	}

	go c.janitor()

	return c
}

// Get returns the cached value for key. An entry whose age has reached its TTL
// counts as absent and is removed.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.insertedAt) >= e.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}

	c.entries[key] = entry{
		value:      value,
		insertedAt: c.now(),
		ttl:        ttl,
	}
}

func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidateMatching drops every entry whose key contains substr, so callers
// can clear "everything about user X" without tracking exact keys.
func (c *Cache) InvalidateMatching(substr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.Contains(key, substr) {
			delete(c.entries, key)
		}
	}
}

func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

// evictLocked removes expired entries first, then the oldest-inserted live
// entries until the cache is under its bound. Insertion order, not access
// order: a hot entry that is old still goes first.
func (c *Cache) evictLocked() {
	now := c.now()
	for key, e := range c.entries {
		if now.Sub(e.insertedAt) >= e.ttl {
			delete(c.entries, key)
		}
	}

	for len(c.entries) >= c.maxEntries {
		oldestKey := ""
		var oldestAt time.Time
		for key, e := range c.entries {
			if oldestKey == "" || e.insertedAt.Before(oldestAt) {
				oldestKey = key
				oldestAt = e.insertedAt
			}
		}
		if oldestKey == "" {
			return
		}
		delete(c.entries, oldestKey)
	}
}

func (c *Cache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, e := range c.entries {
		if now.Sub(e.insertedAt) >= e.ttl {
			delete(c.entries, key)
		}
	}
}

func (c *Cache) janitor() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}
