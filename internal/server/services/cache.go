package services

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/truthchain/internal/server/models"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "truthchain_listing_cache_hits_total",
		Help: "Listing requests served from the cache.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "truthchain_listing_cache_misses_total",
		Help: "Listing requests that went to the repository.",
	})
)

const listingKey = "all"

// ListingCache holds the newest-first record listing for a short TTL. It is
// invalidated whenever a record is created. Each invalidation bumps a
// generation so a listing read before a concurrent insert is not stored.
type ListingCache struct {
	mu    sync.Mutex
	gen   uint64
	cache *expirable.LRU[string, []*models.Record]
}

// NewListingCache returns a cache whose entries live for ttl. A non-positive
// ttl disables caching.
func NewListingCache(ttl time.Duration) *ListingCache {
	if ttl <= 0 {
		return &ListingCache{}
	}
	return &ListingCache{cache: expirable.NewLRU[string, []*models.Record](1, nil, ttl)}
}

// Get returns the cached listing. On a miss it returns the current
// generation, which the caller passes to Set after reading the repository.
func (c *ListingCache) Get() ([]*models.Record, uint64, bool) {
	if c == nil || c.cache == nil {
		return nil, 0, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	val, ok := c.cache.Get(listingKey)
	if ok {
		cacheHitsTotal.Inc()
		return val, c.gen, true
	}
	cacheMissesTotal.Inc()
	return nil, c.gen, false
}

// Set stores records unless the cache was invalidated after gen was
// observed. It reports whether the listing was stored.
func (c *ListingCache) Set(gen uint64, records []*models.Record) bool {
	if c == nil || c.cache == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return false
	}
	c.cache.Add(listingKey, records)
	return true
}

func (c *ListingCache) Invalidate() {
	if c == nil || c.cache == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.cache.Remove(listingKey)
}
