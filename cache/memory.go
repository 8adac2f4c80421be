package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     string
	timestamp time.Time
}

// Memory is a thread-safe in-memory cache with optional TTL.
type Memory struct {
	mu    sync.RWMutex
	items map[string]entry
	ttl   time.Duration
}

// NewMemory creates an in-memory cache. With ttlSeconds <= 0 entries never
// expire, which is what a session-lifetime cache wants.
func NewMemory(ttlSeconds int) *Memory {
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0
	}
	return &Memory{
		items: make(map[string]entry),
		ttl:   ttl,
	}
}

// Get retrieves a value, dropping it if expired.
func (c *Memory) Get(key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}
	if c.ttl > 0 && time.Since(e.timestamp) > c.ttl {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return "", false
	}
	return e.value, true
}

// Set stores a value.
func (c *Memory) Set(key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry{value: value, timestamp: time.Now()}
	return nil
}

// Delete removes a single key.
func (c *Memory) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear removes all entries.
func (c *Memory) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]entry)
}

// Len returns the number of entries, including expired ones.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
