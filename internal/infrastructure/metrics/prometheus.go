// Package metrics exports pipeline, cache and HTTP telemetry to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer records pipeline stage timings, cache outcomes, HTTP requests and
// scheduled job runs.
// A nil *Observer discards everything.
type Observer struct {
	stageDuration   *prometheus.HistogramVec
	stageErrors     *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	jobDuration     *prometheus.HistogramVec
}

// NewObserver registers the collectors on reg (the default registerer when
// nil). Collectors already registered under the same names are reused.
func NewObserver(namespace string, reg prometheus.Registerer) (*Observer, error) {
	if namespace == "" {
		namespace = "rhythm"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	stageDuration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Latency of pipeline stages.",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
	}, []string{"stage"}))
	if err != nil {
		return nil, err
	}
	stageErrors, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stage_errors_total",
		Help:      "Count of failed pipeline stages.",
	}, []string{"stage"}))
	if err != nil {
		return nil, err
	}
	cacheLookups, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chart_cache_lookups_total",
		Help:      "Chart cache lookups by layer and result.",
	}, []string{"layer", "result"}))
	if err != nil {
		return nil, err
	}
	requestDuration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Latency of HTTP requests by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "status"}))
	if err != nil {
		return nil, err
	}

	jobDuration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "job_duration_seconds",
		Help:      "Duration of scheduled job runs by result.",
		Buckets:   []float64{.1, .5, 1, 5, 15, 60, 300, 900, 1800},
	}, []string{"job", "result"}))
	if err != nil {
		return nil, err
	}

	return &Observer{
		stageDuration:   stageDuration,
		stageErrors:     stageErrors,
		cacheLookups:    cacheLookups,
		requestDuration: requestDuration,
		jobDuration:     jobDuration,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("register metric: %w", err)
	}
	return c, nil
}

// ObserveStage records a pipeline stage.
func (o *Observer) ObserveStage(stage string, d time.Duration, err error) {
	if o == nil {
		return
	}
	o.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		o.stageErrors.WithLabelValues(stage).Inc()
	}
}

// ObserveCache records a chart cache lookup.
func (o *Observer) ObserveCache(layer string, hit bool) {
	if o == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	o.cacheLookups.WithLabelValues(layer, result).Inc()
}

// ObserveRequest records an HTTP request.
func (o *Observer) ObserveRequest(route string, status int, d time.Duration) {
	if o == nil {
		return
	}
	o.requestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(d.Seconds())
}

// ObserveJob records a scheduled job run.
func (o *Observer) ObserveJob(job string, d time.Duration, err error) {
	if o == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	o.jobDuration.WithLabelValues(job, result).Observe(d.Seconds())
}
