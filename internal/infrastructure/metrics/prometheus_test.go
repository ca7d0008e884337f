package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserver_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	o, err := NewObserver("test", reg)
	require.NoError(t, err)

	o.ObserveStage("chart", time.Millisecond, nil)
	o.ObserveStage("chart", time.Millisecond, errors.New("boom"))
	o.ObserveCache("lru", true)
	o.ObserveCache("lru", false)
	o.ObserveCache("lru", false)
	o.ObserveRequest("/api/v1/rhythm/daily", 200, 5*time.Millisecond)
	o.ObserveJob("daily_digest", time.Second, nil)
	o.ObserveJob("daily_digest", time.Second, errors.New("partial"))

	assert.Equal(t, 1.0, testutil.ToFloat64(o.stageErrors.WithLabelValues("chart")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.cacheLookups.WithLabelValues("lru", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(o.cacheLookups.WithLabelValues("lru", "miss")))
	assert.Equal(t, 1, testutil.CollectAndCount(o.stageDuration))
	assert.Equal(t, 2, testutil.CollectAndCount(o.jobDuration))
}

func TestObserver_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewObserver("test", reg)
	require.NoError(t, err)
	second, err := NewObserver("test", reg)
	require.NoError(t, err)

	second.ObserveCache("redis", true)
	assert.Equal(t, 1.0, testutil.ToFloat64(first.cacheLookups.WithLabelValues("redis", "hit")))
}

func TestObserver_NilIsSafe(t *testing.T) {
	var o *Observer
	assert.NotPanics(t, func() {
		o.ObserveStage("chart", time.Second, nil)
		o.ObserveCache("lru", true)
		o.ObserveRequest("/", 500, time.Second)
		o.ObserveJob("daily_digest", time.Second, nil)
	})
}
