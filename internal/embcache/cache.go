// Package embcache provides a bounded, time-expiring text-to-vector cache.
package embcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultCapacity is the maximum number of live entries.
const DefaultCapacity = 1000

// DefaultTTL is the lifetime of a cached vector.
const DefaultTTL = 24 * time.Hour

// Cache is a bounded LRU of computed embeddings with per-entry TTL.
// Entries past their TTL are never returned; capacity overflow evicts the
// least recently used entry. Safe for concurrent use.
type Cache struct {
	lru        *expirable.LRU[string, []float32]
	hits       atomic.Int64
	misses     atomic.Int64
	cacheTotal *prometheus.CounterVec
}

// Stats is a point-in-time snapshot of cache counters. Operational
// visibility only.
type Stats struct {
	Size   int   `json:"size"`
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// New creates a cache. Non-positive capacity or TTL fall back to the
// defaults. cacheTotal is a counter vec with label "result" ("hit"/"miss");
// nil disables metrics.
func New(capacity int, ttl time.Duration, cacheTotal *prometheus.CounterVec) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		lru:        expirable.NewLRU[string, []float32](capacity, nil, ttl),
		cacheTotal: cacheTotal,
	}
}

// Get returns the cached vector for text, or false on a miss. Expired
// entries count as misses.
func (c *Cache) Get(text string) ([]float32, bool) {
	vec, ok := c.lru.Get(Key(text))
	if ok {
		c.hits.Add(1)
		c.incMetric("hit")
		return vec, true
	}
	c.misses.Add(1)
	c.incMetric("miss")
	return nil, false
}

// Put stores a computed vector for text, evicting the least recently used
// entry if the cache is full.
func (c *Cache) Put(text string, vec []float32) {
	c.lru.Add(Key(text), vec)
}

// Stats returns current cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Size:   c.lru.Len(),
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}

func (c *Cache) incMetric(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// Key derives a stable cache key: SHA-256 over the normalized text plus its
// length, which cheaply reduces collision risk between distinct inputs that
// normalize alike.
func Key(text string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	h := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%s:%d", hex.EncodeToString(h[:]), len(normalized))
}
