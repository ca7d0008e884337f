// Package jobs holds the scheduled jobs run by the API process.
package jobs

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rhythm-hub/rhythm-core/internal/application/query"
	"github.com/rhythm-hub/rhythm-core/internal/domain/profile"
	"github.com/rhythm-hub/rhythm-core/internal/domain/shared"
	"github.com/rhythm-hub/rhythm-core/pkg/logger"
	"github.com/rhythm-hub/rhythm-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DAILY DIGEST JOB
// ══════════════════════════════════════════════════════════════════════════════

// DailyDigestJobName is the scheduler name of DailyDigestJob.
const DailyDigestJobName = "daily_digest"

// ProfileRhythm produces and records one profile's daily document.
type ProfileRhythm interface {
	Handle(ctx context.Context, q query.GetProfileRhythmQuery) (*query.Document, error)
}

// DailyDigestConfig tunes a digest run.
type DailyDigestConfig struct {
	// Civil offset in minutes that decides which date is "today".
	UTCOffset int

	// Profiles processed concurrently.
	Workers int

	// Ids fetched per page.
	PageSize int

	// Upper bound on one run; zero means none.
	Timeout time.Duration
}

// DefaultDailyDigestConfig returns KST, four workers and pages of 200.
func DefaultDailyDigestConfig() DailyDigestConfig {
	return DailyDigestConfig{
		UTCOffset: timeutil.KSTOffsetMinutes,
		Workers:   4,
		PageSize:  200,
	}
}

// DigestStats summarizes one run.
type DigestStats struct {
	Date     time.Time
	Profiles int
	Written  int
	Skipped  int
	Failed   int
}

// DailyDigestJob computes today's document for every stored profile so the
// content log already holds it when the profile is first read that day.
type DailyDigestJob struct {
	profiles profile.Lister
	rhythm   ProfileRhythm
	config   DailyDigestConfig
	log      *logger.Logger
	now      func() time.Time

	last atomic.Pointer[DigestStats]
}

// NewDailyDigestJob creates the job.
func NewDailyDigestJob(profiles profile.Lister, rhythm ProfileRhythm, cfg DailyDigestConfig, log *logger.Logger) *DailyDigestJob {
	def := DefaultDailyDigestConfig()
	if cfg.Workers < 1 {
		cfg.Workers = def.Workers
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = def.PageSize
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &DailyDigestJob{
		profiles: profiles,
		rhythm:   rhythm,
		config:   cfg,
		log:      log.With(logger.Component(DailyDigestJobName)),
		now:      time.Now,
	}
}

func (j *DailyDigestJob) Name() string { return DailyDigestJobName }

// Run processes every profile once. Profiles deleted during the run are
// skipped. The run fails when any profile failed, after all were attempted.
func (j *DailyDigestJob) Run(ctx context.Context) error {
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	date := timeutil.DateOf(j.now().In(timeutil.FixedZone(j.config.UTCOffset)))
	var written, skipped, failed atomic.Int64
	total := 0

	var g errgroup.Group
	g.SetLimit(j.config.Workers)

	after := ""
	for {
		if err := ctx.Err(); err != nil {
			_ = g.Wait()
			return fmt.Errorf("daily digest interrupted after %d profiles: %w", total, err)
		}
		ids, err := j.profiles.ListIDs(ctx, after, j.config.PageSize)
		if err != nil {
			_ = g.Wait()
			return fmt.Errorf("daily digest: list profiles: %w", err)
		}
		for _, id := range ids {
			total++
			g.Go(func() error {
				_, err := j.rhythm.Handle(ctx, query.GetProfileRhythmQuery{ProfileID: id, Date: date})
				switch {
				case err == nil:
					written.Add(1)
				case shared.IsNotFound(err):
					skipped.Add(1)
				default:
					failed.Add(1)
					j.log.Warn("digest failed for profile", logger.ProfileID(id), logger.Err(err))
				}
				return nil
			})
		}
		if len(ids) < j.config.PageSize {
			break
		}
		after = ids[len(ids)-1]
	}
	_ = g.Wait()

	stats := &DigestStats{
		Date:     date,
		Profiles: total,
		Written:  int(written.Load()),
		Skipped:  int(skipped.Load()),
		Failed:   int(failed.Load()),
	}
	j.last.Store(stats)
	j.log.Info("daily digest finished",
		logger.TargetDate(date),
		logger.Int("profiles", stats.Profiles),
		logger.Int("written", stats.Written),
		logger.Int("skipped", stats.Skipped),
		logger.Int("failed", stats.Failed),
	)

	if stats.Failed > 0 {
		return fmt.Errorf("daily digest: %d of %d profiles failed", stats.Failed, stats.Profiles)
	}
	return nil
}

// LastStats returns the most recent run's summary, or nil before the first run.
func (j *DailyDigestJob) LastStats() *DigestStats {
	return j.last.Load()
}
