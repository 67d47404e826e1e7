package sim

import (
	"sync"
	"time"
)

// DefaultCacheTTL matches the simulator request interval the key layout
// was tuned against.
const DefaultCacheTTL = 2 * time.Second

type cacheEntry struct {
	value   float64
	ok      bool
	fetched time.Time
}

// Cache sits in front of a Client and answers repeated reads of the same
// variable from memory until TTL has passed. Unknown values are cached too,
// so a switched-off radio is not polled on every key refresh.
// Firing an event drops every cached value.
type Cache struct {
	Client Client
	TTL    time.Duration
	Now    func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewCache(client Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{Client: client, TTL: ttl, Now: time.Now, entries: make(map[string]cacheEntry)}
}

func (c *Cache) Get(name string) (float64, bool) {
	now := c.now()

	c.mu.Lock()
	entry, hit := c.entries[name]
	c.mu.Unlock()
	if hit && now.Sub(entry.fetched) < c.TTL {
		return entry.value, entry.ok
	}

	value, ok := c.Client.Get(name)

	c.mu.Lock()
	if c.entries == nil {
		c.entries = make(map[string]cacheEntry)
	}
	c.entries[name] = cacheEntry{value: value, ok: ok, fetched: now}
	c.mu.Unlock()
	return value, ok
}

func (c *Cache) Find(event string) (Event, error) {
	fire, err := c.Client.Find(event)
	if err != nil {
		return nil, err
	}
	return func() error {
		err := fire()
		c.Invalidate()
		return err
	}, nil
}

// Invalidate forgets every cached value.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

func (c *Cache) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}
