package analysis

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache memoizes analysis results keyed by activity fingerprint so
// re-ingestion of unchanged activities within the TTL window skips the
// inference call. It is purely a performance optimization: pipeline
// behavior on a cold cache is identical to a warm one apart from latency.
type Cache struct {
	lru *expirable.LRU[string, Result]
}

// NewCache creates a Cache holding up to size entries for ttl each.
func NewCache(size int, ttl time.Duration) *Cache {
	return &Cache{
		lru: expirable.NewLRU[string, Result](size, nil, ttl),
	}
}

// Get returns the cached result for a fingerprint, if present and fresh.
func (c *Cache) Get(fingerprint string) (Result, bool) {
	return c.lru.Get(fingerprint)
}

// Put stores a result under a fingerprint for the cache's TTL.
func (c *Cache) Put(fingerprint string, r Result) {
	c.lru.Add(fingerprint, r)
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge drops every entry. Used by privacy deletion to ensure no analysis
// output outlives the data it derived from.
func (c *Cache) Purge() {
	c.lru.Purge()
}
