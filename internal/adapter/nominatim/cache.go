package nominatim

import (
	"context"
	"log/slog"
	"sync"

	"github.com/couchcryptid/crop-production-dashboard/internal/domain"
	"github.com/couchcryptid/crop-production-dashboard/internal/observability"
)

// Cache resolves region labels to coordinates through a Geocoder,
// remembering every successful lookup for the lifetime of the process.
// Failed and empty lookups are not remembered, so the next call for the
// same label goes back to the geocoder.
type Cache struct {
	inner   domain.Geocoder
	country string
	metrics *observability.Metrics
	logger  *slog.Logger

	mu      sync.Mutex
	entries map[string]domain.Coordinate
}

// NewCache creates a cache in front of inner. country is appended to every
// derived query.
func NewCache(inner domain.Geocoder, country string, metrics *observability.Metrics, logger *slog.Logger) *Cache {
	return &Cache{
		inner:   inner,
		country: country,
		metrics: metrics,
		logger:  logger,
		entries: make(map[string]domain.Coordinate),
	}
}

// Resolve returns the coordinate for a "Region - UF" label. The bool is
// false when the label could not be resolved.
func (c *Cache) Resolve(ctx context.Context, label string) (domain.Coordinate, bool) {
	if coord, ok := c.get(label); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return coord, true
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	query := domain.SearchQuery(label, c.country)
	result, err := c.inner.ForwardGeocode(ctx, query)
	if err != nil {
		c.logger.Debug("geocoding failed", "label", label, "query", query, "error", err)
		return domain.Coordinate{}, false
	}
	if !result.Found {
		c.logger.Debug("geocoding returned no match", "label", label, "query", query)
		return domain.Coordinate{}, false
	}

	c.put(label, result.Coordinate)
	return result.Coordinate, true
}

// Len reports the number of cached labels.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) get(label string) (domain.Coordinate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	coord, ok := c.entries[label]
	return coord, ok
}

func (c *Cache) put(label string, coord domain.Coordinate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[label] = coord
}
