package cache

import (
	"sync"
	"time"
)

// Cache is a concurrency-safe map whose entries expire individually.
type Cache struct {
	mu  sync.RWMutex
	now func() time.Time
	m   map[string]entry
}

type entry struct {
	val []byte
	exp time.Time
}

func New() *Cache {
	return &Cache{
		now: time.Now,
		m:   make(map[string]entry),
	}
}

// Get returns a copy of the value if present and unexpired.
func (c *Cache) Get(key string) ([]byte, bool) {
	now := c.now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !now.Before(e.exp) {
		c.mu.Lock()
		// re-check: a concurrent Set may have refreshed the key
		if cur, ok := c.m[key]; ok && !now.Before(cur.exp) {
			delete(c.m, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	out := make([]byte, len(e.val))
	copy(out, e.val)
	return out, true
}

func (c *Cache) Set(key string, val []byte, ttl time.Duration) {
	stored := make([]byte, len(val))
	copy(stored, val)

	c.mu.Lock()
	c.m[key] = entry{val: stored, exp: c.now().Add(ttl)}
	c.mu.Unlock()
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

// DeleteExpired drops every expired entry and reports how many went.
func (c *Cache) DeleteExpired() int {
	now := c.now()
	n := 0

	c.mu.Lock()
	for k, e := range c.m {
		if !now.Before(e.exp) {
			delete(c.m, k)
			n++
		}
	}
	c.mu.Unlock()

	return n
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
