package redis

import (
	"context"
	"errors"
	"time"

	"github.com/rhythm-hub/rhythm-core/internal/domain/chart"
	"github.com/rhythm-hub/rhythm-core/pkg/circuitbreaker"
	"github.com/rhythm-hub/rhythm-core/pkg/logger"
)

// ChartCache is the shared chart layer. While Redis keeps failing the breaker
// opens and reads report plain misses, so the pipeline computes locally.
type ChartCache struct {
	cache   *Cache
	ttl     time.Duration
	breaker *circuitbreaker.Breaker
}

// NewChartCache wraps cache. A non-positive ttl falls back to TTLChart.
func NewChartCache(cache *Cache, ttl time.Duration, log *logger.Logger) *ChartCache {
	if ttl <= 0 {
		ttl = TTLChart
	}
	if log == nil {
		log = logger.NewNop()
	}
	breaker := circuitbreaker.New(circuitbreaker.Settings{
		Name:   "chart-cache",
		Counts: isTransportError,
		OnChange: func(name string, from, to circuitbreaker.State) {
			log.Warn("breaker state changed",
				logger.Component(name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	return &ChartCache{cache: cache, ttl: ttl, breaker: breaker}
}

// Get returns the cached chart. Misses, an open breaker and undecodable
// entries all report (zero, false, nil); transport errors are returned.
func (c *ChartCache) Get(ctx context.Context, key string) (chart.Chart, bool, error) {
	var out chart.Chart
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.cache.Get(ctx, ChartKey(key), &out)
	})
	switch {
	case err == nil:
		return out, true, nil
	case errors.Is(err, ErrCacheMiss), circuitbreaker.Rejected(err):
		return chart.Chart{}, false, nil
	case errors.Is(err, ErrCacheSerialization):
		_ = c.cache.Delete(ctx, ChartKey(key))
		return chart.Chart{}, false, nil
	default:
		return chart.Chart{}, false, err
	}
}

// Set stores the chart with the configured TTL. Writes are skipped while the
// breaker is open.
func (c *ChartCache) Set(ctx context.Context, key string, ch chart.Chart) error {
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.cache.Set(ctx, ChartKey(key), ch, c.ttl)
	})
	if circuitbreaker.Rejected(err) {
		return nil
	}
	return err
}

// isTransportError keeps misses and bad entries from tripping the breaker.
func isTransportError(err error) bool {
	return err != nil &&
		!errors.Is(err, ErrCacheMiss) &&
		!errors.Is(err, ErrCacheSerialization) &&
		!errors.Is(err, context.Canceled)
}

// BreakerState reports the breaker state for health checks.
func (c *ChartCache) BreakerState() circuitbreaker.State {
	return c.breaker.State()
}
