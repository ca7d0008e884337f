// Command rhythm-api serves daily, monthly and yearly rhythm documents over
// HTTP. Profile storage is enabled when DATABASE_URL is set, and the shared
// chart cache when REDIS_DISABLED=false. With storage enabled and
// DIGEST_ENABLED=true a daily job precomputes every profile's document.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhythm-hub/rhythm-core/config"
	"github.com/rhythm-hub/rhythm-core/internal/application/command"
	"github.com/rhythm-hub/rhythm-core/internal/application/query"
	"github.com/rhythm-hub/rhythm-core/internal/domain/chart"
	"github.com/rhythm-hub/rhythm-core/internal/infrastructure/cache"
	"github.com/rhythm-hub/rhythm-core/internal/infrastructure/metrics"
	"github.com/rhythm-hub/rhythm-core/internal/infrastructure/persistence/postgres"
	"github.com/rhythm-hub/rhythm-core/internal/infrastructure/persistence/redis"
	"github.com/rhythm-hub/rhythm-core/internal/infrastructure/scheduler"
	"github.com/rhythm-hub/rhythm-core/internal/infrastructure/scheduler/jobs"
	httpserver "github.com/rhythm-hub/rhythm-core/internal/interface/http"
	"github.com/rhythm-hub/rhythm-core/internal/interface/http/handlers"
	"github.com/rhythm-hub/rhythm-core/pkg/circuitbreaker"
	"github.com/rhythm-hub/rhythm-core/pkg/logger"
	"github.com/rhythm-hub/rhythm-core/pkg/timeutil"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION AND LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	log := logger.New(opts).With(logger.String("service", cfg.App.Name))
	defer func() { _ = log.Sync() }()

	log.Info("starting rhythm api",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
	)

	health := handlers.NewCompositeHealthChecker(cfg.App.Version)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. METRICS
	// ─────────────────────────────────────────────────────────────────────────
	var observer *metrics.Observer
	if cfg.Observability.MetricsEnabled {
		observer, err = metrics.NewObserver("rhythm", prometheus.DefaultRegisterer)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. CHART CACHES
	// ─────────────────────────────────────────────────────────────────────────
	local, err := cache.NewChartLRU(cfg.Rhythm.ChartCacheSize, cfg.Rhythm.ChartCacheTTL)
	if err != nil {
		return fmt.Errorf("failed to create chart cache: %w", err)
	}
	layers := []query.CacheLayer{{Name: "lru", Cache: local}}

	if sharedCacheEnabled(cfg) {
		rc, err := redis.NewCache(ctx, redisConfig(cfg.Redis))
		if err != nil {
			// The shared layer is optional; charts are still computed locally.
			log.Warn("redis unavailable, shared chart cache disabled", logger.Err(err))
		} else {
			defer func() { _ = rc.Close() }()
			shared := redis.NewChartCache(rc, cfg.Rhythm.ChartCacheTTL, log)
			layers = append(layers, query.CacheLayer{Name: "redis", Cache: shared})
			health.AddOptionalCheck("chart_cache", handlers.PingCheck(rc))
			health.AddOptionalCheck("chart_cache_breaker", func(context.Context) error {
				if state := shared.BreakerState(); state == circuitbreaker.StateOpen {
					return fmt.Errorf("circuit %s", state)
				}
				return nil
			})
			log.Info("shared chart cache enabled")
		}
	} else if !cfg.Redis.Disabled {
		log.Info("shared chart cache switched off by feature flag")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. PIPELINE AND QUERIES
	// ─────────────────────────────────────────────────────────────────────────
	var pipelineObserver query.Observer = query.NopObserver{}
	if observer != nil {
		pipelineObserver = observer
	}
	charts := query.NewCachingComputer(query.NewCalculatorComputer(chart.NewCalculator()), log, pipelineObserver, layers...)
	pipeline := query.NewPipeline(query.PipelineConfig{
		Charts:          charts,
		Features:        cfg.Features,
		Observer:        pipelineObserver,
		Logger:          log,
		StrictSemantics: cfg.Rhythm.StrictSemantics,
	})

	daily := query.NewGetDailyRhythmHandler(pipeline)
	deps := httpserver.Dependencies{
		Daily:         daily,
		Range:         query.NewGetRangeRhythmHandler(pipeline, cfg.Rhythm.MaxRangeDays, cfg.Rhythm.Workers),
		Monthly:       query.NewGetMonthlyRhythmHandler(pipeline),
		Yearly:        query.NewGetYearlyRhythmHandler(pipeline),
		Features:      cfg.Features,
		HealthChecker: health,
		Logger:        log,
	}
	if observer != nil {
		deps.Metrics = observer
		deps.MetricsHandler = promhttp.Handler()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. PROFILE STORAGE (optional)
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.URL != "" {
		conn, err := postgres.NewConnection(ctx, postgresConfig(cfg.Database), log)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer conn.Close()

		migrator := postgres.NewMigrator(conn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		if status, err := migrator.Status(ctx); err == nil {
			applied := 0
			for _, m := range status {
				if m.IsApplied {
					applied++
				}
			}
			log.Info("migrations completed", logger.Int("applied", applied), logger.Int("total", len(status)))
		}

		profiles := postgres.NewProfileRepository(conn)
		logs := postgres.NewContentLogRepository(conn)
		deps.CreateProfile = command.NewCreateProfileHandler(profiles, cfg.Rhythm.DefaultUTCOffset, log)
		deps.DeleteProfile = command.NewDeleteProfileHandler(profiles, log)
		deps.GetProfile = query.NewGetProfileHandler(profiles)
		deps.ProfileRhythm = query.NewGetProfileRhythmHandler(profiles, logs, daily, cfg.Features, log)
		deps.ContentLog = query.NewListContentLogHandler(profiles, logs)
		health.AddCheck("database", handlers.PingCheck(conn))

		if cfg.Digest.Enabled {
			sched, err := startDigest(ctx, cfg, profiles, deps.ProfileRhythm, observer, log)
			if err != nil {
				return err
			}
			defer func() { _ = sched.Stop() }()
		}
	} else {
		log.Warn("DATABASE_URL not set, profile endpoints disabled")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	httpCfg := httpserver.DefaultConfig()
	httpCfg.Addr = cfg.HTTP.Addr
	httpCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	httpCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	httpCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	httpCfg.MaxBodyBytes = cfg.HTTP.MaxBodyBytes
	httpCfg.RequestDeadline = cfg.HTTP.RequestDeadline
	httpCfg.DefaultUTCOffset = cfg.Rhythm.DefaultUTCOffset
	httpCfg.MetricsPath = cfg.Observability.MetricsPath
	httpCfg.Version = cfg.App.Version

	server := httpserver.NewServer(httpCfg, deps)
	errCh := server.StartAsync()

	select {
	case <-ctx.Done():
		log.Info("received shutdown signal")
	case err, ok := <-errCh:
		if ok && err != nil {
			return err
		}
		return nil
	}

	uptime := server.Uptime()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", logger.Err(err))
		return err
	}
	log.Info("shutdown completed", logger.Duration("uptime", uptime))
	return nil
}

// sharedCacheEnabled reports whether charts are read through Redis.
func sharedCacheEnabled(cfg *config.Config) bool {
	return !cfg.Redis.Disabled && cfg.Features.IsEnabled(config.FeatureSharedCache, "")
}

// startDigest schedules the daily content log precompute at the configured
// local time.
func startDigest(
	ctx context.Context,
	cfg *config.Config,
	profiles *postgres.ProfileRepository,
	rhythm *query.GetProfileRhythmHandler,
	observer *metrics.Observer,
	log *logger.Logger,
) (*scheduler.Scheduler, error) {
	schedCfg := scheduler.Config{Logger: log}
	if observer != nil {
		schedCfg.Observer = observer
	}
	sched := scheduler.New(schedCfg)

	job := jobs.NewDailyDigestJob(profiles, rhythm, jobs.DailyDigestConfig{
		UTCOffset: cfg.Rhythm.DefaultUTCOffset,
		Workers:   cfg.Digest.Workers,
		Timeout:   cfg.Digest.Timeout,
	}, log)
	at := scheduler.Daily{
		Hour:     cfg.Digest.Hour,
		Minute:   cfg.Digest.Minute,
		Location: timeutil.FixedZone(cfg.Rhythm.DefaultUTCOffset),
	}
	if err := sched.Register(job, at); err != nil {
		return nil, fmt.Errorf("failed to register digest job: %w", err)
	}
	if err := sched.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}
	return sched, nil
}

func redisConfig(c config.RedisConfig) redis.Config {
	rc := redis.DefaultConfig()
	rc.URL = c.URL
	rc.Host = c.Host
	rc.Port = c.Port
	rc.Password = c.Password
	rc.DB = c.DB
	rc.PoolSize = c.PoolSize
	rc.MinIdleConns = c.MinIdleConns
	rc.DialTimeout = c.DialTimeout
	rc.ReadTimeout = c.ReadTimeout
	rc.WriteTimeout = c.WriteTimeout
	return rc
}

func postgresConfig(c config.DatabaseConfig) postgres.Config {
	pc := postgres.DefaultConfig(c.URL)
	pc.MaxConns = int32(c.MaxOpenConns)
	pc.MinConns = int32(c.MaxIdleConns)
	pc.MaxConnLifetime = c.ConnMaxLifetime
	pc.MaxConnIdleTime = c.ConnMaxIdleTime
	pc.QueryTimeout = c.QueryTimeout
	pc.ConnectAttempts = c.ConnectRetries
	return pc
}
