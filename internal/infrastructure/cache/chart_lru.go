// Package cache holds the in-process chart cache.
package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rhythm-hub/rhythm-core/internal/domain/chart"
)

const (
	defaultChartCacheSize = 1024
	defaultChartCacheTTL  = 24 * time.Hour
)

type chartEntry struct {
	chart    chart.Chart
	storedAt time.Time
}

// ChartLRU is a bounded, TTL-checked chart cache safe for concurrent use.
type ChartLRU struct {
	cache *lru.Cache[string, chartEntry]
	ttl   time.Duration
	now   func() time.Time
}

// NewChartLRU creates a cache holding at most size charts for ttl each.
// Non-positive values fall back to 1024 entries and 24h.
func NewChartLRU(size int, ttl time.Duration) (*ChartLRU, error) {
	if size <= 0 {
		size = defaultChartCacheSize
	}
	if ttl <= 0 {
		ttl = defaultChartCacheTTL
	}
	c, err := lru.New[string, chartEntry](size)
	if err != nil {
		return nil, err
	}
	return &ChartLRU{cache: c, ttl: ttl, now: time.Now}, nil
}

// Get returns a live entry. Expired entries are evicted and reported as misses.
func (c *ChartLRU) Get(_ context.Context, key string) (chart.Chart, bool, error) {
	entry, ok := c.cache.Get(key)
	if !ok {
		return chart.Chart{}, false, nil
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		c.cache.Remove(key)
		return chart.Chart{}, false, nil
	}
	return entry.chart, true, nil
}

// Set stores a chart.
func (c *ChartLRU) Set(_ context.Context, key string, ch chart.Chart) error {
	c.cache.Add(key, chartEntry{chart: ch, storedAt: c.now()})
	return nil
}

// Len returns the number of cached charts, expired ones included.
func (c *ChartLRU) Len() int {
	return c.cache.Len()
}
