package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rhythm-hub/rhythm-core/config"
)

func TestSharedCacheEnabled(t *testing.T) {
	cfg := &config.Config{Features: config.LoadFeatureFlags()}
	assert.True(t, sharedCacheEnabled(cfg))

	cfg.Redis.Disabled = true
	assert.False(t, sharedCacheEnabled(cfg))

	cfg.Redis.Disabled = false
	cfg.Features.SetRolloutPercent(config.FeatureSharedCache, 0)
	assert.False(t, sharedCacheEnabled(cfg), "flag off skips redis")
}
