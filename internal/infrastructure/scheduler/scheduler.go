// Package scheduler runs background jobs on fixed schedules inside the API
// process.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rhythm-hub/rhythm-core/pkg/logger"
)

var (
	ErrAlreadyRunning = errors.New("scheduler: already running")
	ErrNotRunning     = errors.New("scheduler: not running")
	ErrJobExists      = errors.New("scheduler: job already registered")
	ErrJobNotFound    = errors.New("scheduler: job not found")
	ErrJobBusy        = errors.New("scheduler: job is running")
)

// ══════════════════════════════════════════════════════════════════════════════
// JOBS AND SCHEDULES
// ══════════════════════════════════════════════════════════════════════════════

// Job is a unit of background work.
type Job interface {
	// Name is unique within a scheduler.
	Name() string

	// Run does the work. ctx ends when the scheduler stops.
	Run(ctx context.Context) error
}

// Schedule yields the next run time strictly after t.
type Schedule interface {
	Next(t time.Time) time.Time
	String() string
}

// Every runs a job at a fixed interval.
type Every time.Duration

func (e Every) Next(t time.Time) time.Time { return t.Add(time.Duration(e)) }
func (e Every) String() string             { return "@every " + time.Duration(e).String() }

// Daily runs a job once a day at Hour:Minute in Location (UTC when nil).
type Daily struct {
	Hour     int
	Minute   int
	Location *time.Location
}

func (d Daily) Next(t time.Time) time.Time {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), d.Hour, d.Minute, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (d Daily) String() string {
	loc := "UTC"
	if d.Location != nil {
		loc = d.Location.String()
	}
	return fmt.Sprintf("@daily %02d:%02d %s", d.Hour, d.Minute, loc)
}

// Result describes one finished run.
type Result struct {
	Job       string
	StartedAt time.Time
	Duration  time.Duration
	Err       error
}

// Observer receives every finished run.
type Observer interface {
	ObserveJob(job string, d time.Duration, err error)
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULER
// ══════════════════════════════════════════════════════════════════════════════

// Config configures a Scheduler. Zero values get defaults.
type Config struct {
	Logger   *logger.Logger
	Observer Observer

	// How often due jobs are checked (1s).
	Tick time.Duration

	Now func() time.Time
}

type entry struct {
	job      Job
	schedule Schedule
	next     time.Time
	running  bool
	last     *Result
}

// Scheduler starts each registered job when its schedule comes due. A job
// never overlaps itself; a run that comes due while the previous one is still
// going is skipped.
type Scheduler struct {
	log      *logger.Logger
	observer Observer
	tick     time.Duration
	now      func() time.Time

	mu      sync.Mutex
	jobs    map[string]*entry
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a stopped scheduler.
func New(cfg Config) *Scheduler {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Scheduler{
		log:      cfg.Logger.With(logger.Component("scheduler")),
		observer: cfg.Observer,
		tick:     cfg.Tick,
		now:      cfg.Now,
		jobs:     make(map[string]*entry),
	}
}

// Register adds a job. Its first run is the schedule's next time after now.
func (s *Scheduler) Register(job Job, schedule Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("%w: %s", ErrJobExists, name)
	}
	s.jobs[name] = &entry{job: job, schedule: schedule, next: schedule.Next(s.now())}
	s.log.Info("job registered",
		logger.String("job", name),
		logger.String("schedule", schedule.String()),
	)
	return nil
}

// Start runs the check loop until ctx ends or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	s.wg.Add(1)
	go s.loop(ctx)
	s.log.Info("scheduler started", logger.Int("jobs", len(s.jobs)))
	return nil
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.dispatchDue(ctx)
		}
	}
}

func (s *Scheduler) dispatchDue(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.jobs {
		if now.Before(e.next) {
			continue
		}
		e.next = e.schedule.Next(now)
		if e.running {
			s.log.Warn("job still running, skipping run", logger.String("job", e.job.Name()))
			continue
		}
		e.running = true
		s.wg.Add(1)
		go func(e *entry) {
			defer s.wg.Done()
			s.run(ctx, e)
		}(e)
	}
}

// run executes e and records the result. The caller has marked e running.
func (s *Scheduler) run(ctx context.Context, e *entry) Result {
	name := e.job.Name()
	start := s.now()
	s.log.Info("job started", logger.String("job", name))

	err := e.job.Run(ctx)
	res := Result{Job: name, StartedAt: start, Duration: s.now().Sub(start), Err: err}

	s.mu.Lock()
	e.running = false
	e.last = &res
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.ObserveJob(name, res.Duration, err)
	}
	if err != nil {
		s.log.Error("job failed", logger.String("job", name), logger.Latency(res.Duration), logger.Err(err))
	} else {
		s.log.Info("job completed", logger.String("job", name), logger.Latency(res.Duration))
	}
	return res
}

// RunNow runs a job immediately on the caller's goroutine, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) (Result, error) {
	s.mu.Lock()
	e, ok := s.jobs[name]
	if !ok {
		s.mu.Unlock()
		return Result{}, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if e.running {
		s.mu.Unlock()
		return Result{}, fmt.Errorf("%w: %s", ErrJobBusy, name)
	}
	e.running = true
	s.mu.Unlock()

	return s.run(ctx, e), nil
}

// JobInfo is a snapshot of one registered job.
type JobInfo struct {
	Name     string
	Schedule string
	Next     time.Time
	Running  bool
	Last     *Result
}

// Jobs lists registered jobs by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for name, e := range s.jobs {
		info := JobInfo{Name: name, Schedule: e.schedule.String(), Next: e.next, Running: e.running}
		if e.last != nil {
			last := *e.last
			info.Last = &last
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
