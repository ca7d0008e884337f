package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhythm-hub/rhythm-core/internal/domain/chart"
)

func TestChartLRU_HitMissAndExpiry(t *testing.T) {
	c, err := NewChartLRU(2, time.Minute)
	require.NoError(t, err)
	now := time.Date(2026, time.January, 21, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	want := chart.Chart{SupportPercent: 42}
	require.NoError(t, c.Set(ctx, "a", want))
	got, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	now = now.Add(time.Minute)
	_, ok, _ = c.Get(ctx, "a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestChartLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewChartLRU(2, 0)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", chart.Chart{SupportPercent: 1}))
	require.NoError(t, c.Set(ctx, "b", chart.Chart{SupportPercent: 2}))
	_, _, _ = c.Get(ctx, "a")
	require.NoError(t, c.Set(ctx, "c", chart.Chart{SupportPercent: 3}))

	_, ok, _ := c.Get(ctx, "b")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}
