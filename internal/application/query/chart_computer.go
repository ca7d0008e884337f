package query

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/rhythm-hub/rhythm-core/internal/domain/birth"
	"github.com/rhythm-hub/rhythm-core/internal/domain/chart"
	"github.com/rhythm-hub/rhythm-core/pkg/logger"
	"github.com/rhythm-hub/rhythm-core/pkg/timeutil"
)

// CalculatorComputer adapts the pure calculator to ChartComputer.
type CalculatorComputer struct {
	calc *chart.Calculator
}

// NewCalculatorComputer wraps a calculator.
func NewCalculatorComputer(calc *chart.Calculator) *CalculatorComputer {
	return &CalculatorComputer{calc: calc}
}

// ComputeChart implements ChartComputer.
func (c *CalculatorComputer) ComputeChart(ctx context.Context, b birth.Info, target time.Time) (chart.Chart, error) {
	if err := ctx.Err(); err != nil {
		return chart.Chart{}, err
	}
	return c.calc.ComputeChart(b, target)
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHING DECORATOR
// ══════════════════════════════════════════════════════════════════════════════

// CacheLayer is a named chart cache, consulted in order.
type CacheLayer struct {
	Name  string
	Cache ChartCache
}

// CachingComputer consults cache layers before delegating. Cache failures are
// logged and treated as misses.
type CachingComputer struct {
	next     ChartComputer
	layers   []CacheLayer
	observer Observer
	log      *logger.Logger
}

// NewCachingComputer decorates next with the given layers, fastest first.
func NewCachingComputer(next ChartComputer, log *logger.Logger, obs Observer, layers ...CacheLayer) *CachingComputer {
	if obs == nil {
		obs = NopObserver{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &CachingComputer{next: next, layers: layers, observer: obs, log: log.With(logger.Component("chart_cache"))}
}

// ComputeChart implements ChartComputer. The record is validated before any
// lookup so a hit and a miss reject the same input.
func (c *CachingComputer) ComputeChart(ctx context.Context, b birth.Info, target time.Time) (chart.Chart, error) {
	if err := b.Validate(); err != nil {
		return chart.Chart{}, err
	}
	key := ChartKey(b, target)

	for i, layer := range c.layers {
		cached, ok, err := layer.Cache.Get(ctx, key)
		if err != nil {
			c.log.Warn("chart cache read failed", logger.String("layer", layer.Name), logger.Err(err))
			continue
		}
		c.observer.ObserveCache(layer.Name, ok)
		if ok {
			c.fill(ctx, key, cached, c.layers[:i])
			return cached, nil
		}
	}

	computed, err := c.next.ComputeChart(ctx, b, target)
	if err != nil {
		return chart.Chart{}, err
	}
	c.fill(ctx, key, computed, c.layers)
	return computed, nil
}

func (c *CachingComputer) fill(ctx context.Context, key string, ch chart.Chart, layers []CacheLayer) {
	for _, layer := range layers {
		if err := layer.Cache.Set(ctx, key, ch); err != nil {
			c.log.Warn("chart cache write failed", logger.String("layer", layer.Name), logger.Err(err))
		}
	}
}

// ChartKey derives a stable cache key from every input the calculator reads.
// The name is not one of them.
func ChartKey(b birth.Info, target time.Time) string {
	optional := func(f *float64) string {
		if f == nil {
			return "-"
		}
		return strconv.FormatFloat(*f, 'f', 6, 64)
	}
	canonical := fmt.Sprintf("v1|%s|%s|%s|%s|%s|%s|%d|%s",
		timeutil.FormatDate(b.Date),
		b.Time,
		b.Gender,
		b.Place.Name,
		optional(b.Place.Latitude),
		optional(b.Place.Longitude),
		b.Place.Offset(),
		timeutil.FormatDate(timeutil.DateOf(target)),
	)
	sum := blake2b.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:16])
}
