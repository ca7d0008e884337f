// Package query contains the read side of rhythm-core: the chart, rhythm,
// content and role stages wired into daily, range, monthly and yearly
// pipelines, plus profile lookups.
package query

import (
	"context"
	"time"

	"github.com/rhythm-hub/rhythm-core/internal/domain/birth"
	"github.com/rhythm-hub/rhythm-core/internal/domain/chart"
)

// ══════════════════════════════════════════════════════════════════════════════
// PORTS
// ══════════════════════════════════════════════════════════════════════════════

// ChartComputer produces the chart for a birth record and target date.
type ChartComputer interface {
	ComputeChart(ctx context.Context, b birth.Info, target time.Time) (chart.Chart, error)
}

// ChartCache stores charts by an opaque key. A miss is (zero, false, nil).
type ChartCache interface {
	Get(ctx context.Context, key string) (chart.Chart, bool, error)
	Set(ctx context.Context, key string, c chart.Chart) error
}

// Observer receives pipeline timings and cache outcomes.
type Observer interface {
	ObserveStage(stage string, d time.Duration, err error)
	ObserveCache(layer string, hit bool)
}

// FeatureGate answers feature flag questions for a profile ("" = anonymous).
type FeatureGate interface {
	IsEnabled(feature, profileID string) bool
}

// Feature names the pipeline consults.
const (
	FeatureRoleTranslation = "rhythm.role_translation"
	FeatureSemanticCheck   = "rhythm.semantic_check"
	FeatureContentLog      = "rhythm.content_log"
)

// Pipeline stages reported to the Observer.
const (
	StageChart     = "chart"
	StageAnalyze   = "analyze"
	StageAssemble  = "assemble"
	StageValidate  = "validate"
	StageTranslate = "translate"
)

// NopObserver discards observations.
type NopObserver struct{}

func (NopObserver) ObserveStage(string, time.Duration, error) {}
func (NopObserver) ObserveCache(string, bool)                 {}

// allowAll enables every feature.
type allowAll struct{}

func (allowAll) IsEnabled(string, string) bool { return true }
