// Package cache is a small in-process TTL cache with prefix invalidation.
package cache

import (
	"strings"
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// TTL is safe for concurrent use. Expired entries are dropped lazily on read
// and on Set.
type TTL struct {
	mu         sync.RWMutex
	defaultTTL time.Duration
	items      map[string]entry
	now        func() time.Time
	generation uint64
}

func New(defaultTTL time.Duration) *TTL {
	return &TTL{
		defaultTTL: defaultTTL,
		items:      make(map[string]entry),
		now:        time.Now,
	}
}

func (c *TTL) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		if cur, still := c.items[key]; still && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores value under key. A non-positive ttl uses the cache default.
func (c *TTL) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.set(key, value, ttl)
}

func (c *TTL) set(key string, value any, ttl time.Duration) {
	now := c.now()
	for k, e := range c.items {
		if !now.Before(e.expiresAt) {
			delete(c.items, k)
		}
	}
	c.items[key] = entry{value: value, expiresAt: now.Add(ttl)}
}

// Generation changes on every Invalidate and Clear. A value read from the
// backing store before a change must not be stored after it.
func (c *TTL) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// SetIfGeneration stores value only when no Invalidate or Clear has run since
// gen was read. It reports whether the value was stored.
func (c *TTL) SetIfGeneration(gen uint64, key string, value any, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		return false
	}
	c.set(key, value, ttl)
	return true
}

// Invalidate removes every key starting with prefix and returns how many
// were removed.
func (c *TTL) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++

	removed := 0
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

func (c *TTL) Clear() {
	c.mu.Lock()
	c.generation++
	c.items = make(map[string]entry)
	c.mu.Unlock()
}

func (c *TTL) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
