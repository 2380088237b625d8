package nominatim

import (
	"container/list"
	"context"
	"strings"
	"sync"

	"github.com/evatlas/chargefeed/internal/domain"
	"github.com/evatlas/chargefeed/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache. Seed lists
// repeat cities (several operators announce sites in the same hub towns),
// and Nominatim asks clients to cache aggressively.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder. A nil
// metrics disables instrumentation.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, city, country string) (domain.GeocodeResult, error) {
	key := strings.ToLower(city) + "|" + strings.ToLower(country)
	if result, ok := c.cache.get(key); ok {
		c.countCache("hit")
		return result, nil
	}
	c.countCache("miss")

	result, err := c.inner.Geocode(ctx, city, country)
	if err != nil {
		c.countRequest("error")
		return result, err
	}
	if result.Lat == 0 && result.Lon == 0 {
		// Only cache hits with coordinates so transient "not found" responses
		// can be retried on the next run.
		c.countRequest("empty")
		return result, nil
	}
	c.countRequest("success")
	c.cache.put(key, result)
	return result, nil
}

func (c *CachedGeocoder) countCache(result string) {
	if c.metrics != nil {
		c.metrics.GeocodeCache.WithLabelValues(result).Inc()
	}
}

func (c *CachedGeocoder) countRequest(outcome string) {
	if c.metrics != nil {
		c.metrics.GeocodeRequests.WithLabelValues(outcome).Inc()
	}
}

// lruCache is a small thread-safe LRU for geocode results.
type lruCache struct {
	maxEntries int

	mu      sync.Mutex
	order   *list.List // front = most recently used; elements hold *cacheEntry
	entries map[string]*list.Element
}

type cacheEntry struct {
	key   string
	value domain.GeocodeResult
}

func newLRUCache(maxEntries int) *lruCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &lruCache{
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

func (c *lruCache) get(key string) (domain.GeocodeResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return domain.GeocodeResult{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).value, true
}

func (c *lruCache) put(key string, value domain.GeocodeResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).value = value
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, value: value})

	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}
