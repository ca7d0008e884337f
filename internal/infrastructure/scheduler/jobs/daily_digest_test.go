package jobs

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhythm-hub/rhythm-core/internal/application/query"
	"github.com/rhythm-hub/rhythm-core/internal/domain/shared"
)

type idList []string

func (l idList) ListIDs(_ context.Context, after string, limit int) ([]string, error) {
	i := sort.SearchStrings(l, after)
	if i < len(l) && l[i] == after {
		i++
	}
	end := min(i+limit, len(l))
	return l[i:end], nil
}

type fakeRhythm struct {
	mu    sync.Mutex
	calls []query.GetProfileRhythmQuery
	errs  map[string]error
}

func (f *fakeRhythm) Handle(_ context.Context, q query.GetProfileRhythmQuery) (*query.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, q)
	if err := f.errs[q.ProfileID]; err != nil {
		return nil, err
	}
	return &query.Document{}, nil
}

func newJob(ids idList, r *fakeRhythm) *DailyDigestJob {
	j := NewDailyDigestJob(ids, r, DailyDigestConfig{UTCOffset: 540, Workers: 2, PageSize: 2}, nil)
	// 20:00 UTC on Jan 20 is already Jan 21 in Seoul.
	j.now = func() time.Time { return time.Date(2026, 1, 20, 20, 0, 0, 0, time.UTC) }
	return j
}

func TestDailyDigest_ProcessesEveryProfile(t *testing.T) {
	ids := idList{"a", "b", "c", "d", "e"}
	r := &fakeRhythm{}
	j := newJob(ids, r)
	assert.Nil(t, j.LastStats())

	require.NoError(t, j.Run(context.Background()))

	require.Len(t, r.calls, 5)
	seen := map[string]bool{}
	for _, c := range r.calls {
		seen[c.ProfileID] = true
		assert.Equal(t, "2026-01-21", c.Date.Format(time.DateOnly))
		assert.Nil(t, c.Role, "profile's own role")
	}
	assert.Len(t, seen, 5)

	stats := j.LastStats()
	require.NotNil(t, stats)
	assert.Equal(t, DigestStats{Date: stats.Date, Profiles: 5, Written: 5}, *stats)
	assert.Equal(t, DailyDigestJobName, j.Name())
}

func TestDailyDigest_FailuresAndDeletions(t *testing.T) {
	r := &fakeRhythm{errs: map[string]error{
		"b": shared.ErrProfileNotFound,
		"c": errors.New("db down"),
	}}
	j := newJob(idList{"a", "b", "c"}, r)

	err := j.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 profiles failed")

	stats := j.LastStats()
	assert.Equal(t, 1, stats.Written)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Failed)
}

func TestDailyDigest_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &fakeRhythm{}

	err := newJob(idList{"a"}, r).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.calls)
}

func TestDailyDigest_Empty(t *testing.T) {
	j := newJob(nil, &fakeRhythm{})
	require.NoError(t, j.Run(context.Background()))
	assert.Zero(t, j.LastStats().Profiles)
}
