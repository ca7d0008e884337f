package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingJob struct {
	name  string
	runs  atomic.Int32
	err   error
	block chan struct{}
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.block != nil {
		select {
		case <-j.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return j.err
}

type jobRecorder struct {
	mu   sync.Mutex
	errs map[string][]error
}

func (r *jobRecorder) ObserveJob(job string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errs == nil {
		r.errs = map[string][]error{}
	}
	r.errs[job] = append(r.errs[job], err)
}

func TestDaily_Next(t *testing.T) {
	kst := time.FixedZone("KST", 9*3600)
	d := Daily{Hour: 5, Minute: 30, Location: kst}

	before := time.Date(2026, 3, 1, 4, 0, 0, 0, kst)
	assert.Equal(t, time.Date(2026, 3, 1, 5, 30, 0, 0, kst), d.Next(before))

	at := time.Date(2026, 3, 1, 5, 30, 0, 0, kst)
	assert.Equal(t, time.Date(2026, 3, 2, 5, 30, 0, 0, kst), d.Next(at), "strictly after")

	// 21:00 UTC on Feb 28 is 06:00 KST on Mar 1.
	utc := time.Date(2026, 2, 28, 21, 0, 0, 0, time.UTC)
	assert.True(t, d.Next(utc).Equal(time.Date(2026, 3, 2, 5, 30, 0, 0, kst)))

	assert.Equal(t, "@daily 05:30 KST", d.String())
	assert.Equal(t, "@every 1m0s", Every(time.Minute).String())
}

func TestScheduler_RunsDueJobs(t *testing.T) {
	rec := &jobRecorder{}
	s := New(Config{Tick: 5 * time.Millisecond, Observer: rec})
	job := &countingJob{name: "tick"}
	require.NoError(t, s.Register(job, Every(10*time.Millisecond)))

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyRunning)

	require.Eventually(t, func() bool { return job.runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop())
	assert.ErrorIs(t, s.Stop(), ErrNotRunning)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.GreaterOrEqual(t, len(rec.errs["tick"]), 2)
}

func TestScheduler_NoOverlap(t *testing.T) {
	s := New(Config{Tick: 2 * time.Millisecond})
	job := &countingJob{name: "slow", block: make(chan struct{})}
	require.NoError(t, s.Register(job, Every(time.Millisecond)))
	require.NoError(t, s.Start(context.Background()))

	require.Eventually(t, func() bool { return job.runs.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), job.runs.Load())

	_, err := s.RunNow(context.Background(), "slow")
	assert.ErrorIs(t, err, ErrJobBusy)

	close(job.block)
	require.NoError(t, s.Stop())
}

func TestScheduler_StopCancelsRunningJobs(t *testing.T) {
	s := New(Config{Tick: 2 * time.Millisecond})
	job := &countingJob{name: "blocked", block: make(chan struct{})}
	require.NoError(t, s.Register(job, Every(time.Millisecond)))
	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return job.runs.Load() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, s.Stop())
	infos := s.Jobs()
	require.Len(t, infos, 1)
	require.NotNil(t, infos[0].Last)
	assert.ErrorIs(t, infos[0].Last.Err, context.Canceled)
}

func TestScheduler_RunNowAndRegister(t *testing.T) {
	rec := &jobRecorder{}
	s := New(Config{Observer: rec})
	boom := errors.New("boom")
	require.NoError(t, s.Register(&countingJob{name: "a", err: boom}, Every(time.Hour)))
	assert.ErrorIs(t, s.Register(&countingJob{name: "a"}, Every(time.Hour)), ErrJobExists)

	res, err := s.RunNow(context.Background(), "a")
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err, boom)
	assert.Equal(t, "a", res.Job)
	assert.Equal(t, []error{boom}, rec.errs["a"])

	_, err = s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	infos := s.Jobs()
	require.Len(t, infos, 1)
	assert.Equal(t, "@every 1h0m0s", infos[0].Schedule)
	assert.False(t, infos[0].Running)
}
