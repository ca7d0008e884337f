package redis

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhythm-hub/rhythm-core/internal/domain/birth"
	"github.com/rhythm-hub/rhythm-core/internal/domain/chart"
	"github.com/rhythm-hub/rhythm-core/pkg/circuitbreaker"
	"github.com/rhythm-hub/rhythm-core/pkg/timeutil"
)

func TestConfig_Options(t *testing.T) {
	cfg := DefaultConfig()
	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 10, opts.PoolSize)

	cfg.URL = "redis://:secret@cache:6380/2"
	opts, err = cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	cfg.URL = "http://nope"
	_, err = cfg.Options()
	assert.ErrorIs(t, err, ErrCacheConnection)
}

func TestChartKey(t *testing.T) {
	assert.Equal(t, "rhythm:chart:abc", ChartKey("abc"))
}

func TestChartCache_BreakerOpensOnUnreachableRedis(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	cc := NewChartCache(NewCacheWithClient(client), time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, ok, err := cc.Get(ctx, "k")
		assert.False(t, ok)
		assert.Error(t, err)
	}
	assert.Equal(t, circuitbreaker.StateOpen, cc.BreakerState())

	// Open breaker: plain misses and skipped writes.
	_, ok, err := cc.Get(ctx, "k")
	assert.False(t, ok)
	assert.NoError(t, err)
	assert.NoError(t, cc.Set(ctx, "k", chart.Chart{}))
}

func TestIsTransportError(t *testing.T) {
	assert.False(t, isTransportError(nil))
	assert.False(t, isTransportError(ErrCacheMiss))
	assert.False(t, isTransportError(ErrCacheSerialization))
	assert.False(t, isTransportError(context.Canceled))
	assert.True(t, isTransportError(ErrCacheConnection))
}

// TestChartCache_Integration runs against the server named by RHYTHM_TEST_REDIS_ADDR.
func TestChartCache_Integration(t *testing.T) {
	addr := os.Getenv("RHYTHM_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("RHYTHM_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()

	cache, err := NewCache(ctx, Config{URL: "redis://" + addr, DialTimeout: time.Second})
	require.NoError(t, err)
	defer cache.Close()

	info, err := birth.NewInfo(birth.NewInfoParams{
		Name: "Kim", BirthDate: "1990-01-15", BirthTime: "14:30", Gender: "male", PlaceName: "Seoul",
	})
	require.NoError(t, err)
	want, err := chart.NewCalculator().ComputeChart(info, timeutil.Date(2026, time.January, 21))
	require.NoError(t, err)

	cc := NewChartCache(cache, time.Minute, nil)
	key := "test-" + time.Now().Format(time.RFC3339Nano)
	defer cache.Delete(ctx, ChartKey(key))

	_, ok, err := cc.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cc.Set(ctx, key, want))
	got, ok, err := cc.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Pillars, got.Pillars)
	assert.Equal(t, want.Favorable, got.Favorable)
}
