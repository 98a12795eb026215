// Package cache provides a bounded LRU cache with per-entry TTL and
// hit/miss/latency metrics, used to serve repeated GET responses without
// touching the network.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Cache is a capacity-bound LRU string cache. Entries expire after the
// global TTL unless a Put overrides it; expiry is evaluated lazily on access.
type Cache struct {
	mu        sync.Mutex
	capacity  int
	globalTTL time.Duration
	// ll holds *entry, front = most recently used.
	ll       *list.List
	elements map[string]*list.Element
	metrics  Metrics
}

type entry struct {
	key       string
	value     string
	expiresAt time.Time
}

// New creates a cache holding at most capacity entries, each living for
// globalTTL unless overridden per Put. capacity must be positive.
func New(capacity int, globalTTL time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache{
		capacity:  capacity,
		globalTTL: globalTTL,
		ll:        list.New(),
		elements:  make(map[string]*list.Element),
	}
}

// Get returns the cached value for key. Expired entries are removed on
// access and count as misses.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.elements[key]
	if !ok {
		c.metrics.misses.Add(1)
		return "", false
	}

	e := elem.Value.(*entry)
	if time.Now().After(e.expiresAt) {
		c.ll.Remove(elem)
		delete(c.elements, key)
		c.metrics.misses.Add(1)
		return "", false
	}

	c.ll.MoveToFront(elem)
	c.metrics.hits.Add(1)
	return e.value, true
}

// Option configures a single Put.
type Option func(*putOptions)

type putOptions struct {
	ttl time.Duration
}

// WithTTL overrides the global TTL for one entry.
func WithTTL(d time.Duration) Option {
	return func(o *putOptions) { o.ttl = d }
}

// Put stores value under key, evicting the least recently used entry when
// at capacity.
func (c *Cache) Put(key, value string, opts ...Option) {
	var o putOptions
	for _, opt := range opts {
		opt(&o)
	}
	ttl := c.globalTTL
	if o.ttl > 0 {
		ttl = o.ttl
	}
	expiresAt := time.Now().Add(ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.elements[key]; ok {
		e := elem.Value.(*entry)
		e.value = value
		e.expiresAt = expiresAt
		c.ll.MoveToFront(elem)
		return
	}

	if c.ll.Len() >= c.capacity {
		back := c.ll.Back()
		if back != nil {
			evicted := c.ll.Remove(back).(*entry)
			delete(c.elements, evicted.key)
		}
	}

	c.elements[key] = c.ll.PushFront(&entry{key: key, value: value, expiresAt: expiresAt})
}

// Invalidate removes key if present.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.elements[key]; ok {
		c.ll.Remove(elem)
		delete(c.elements, key)
	}
}

// Len returns the number of entries, including any not yet lazily expired.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Metrics returns the cache's live counters.
func (c *Cache) Metrics() *Metrics {
	return &c.metrics
}
