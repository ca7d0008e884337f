package query

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rhythm-hub/rhythm-core/internal/domain/birth"
	"github.com/rhythm-hub/rhythm-core/internal/domain/role"
	"github.com/rhythm-hub/rhythm-core/internal/domain/shared"
	"github.com/rhythm-hub/rhythm-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET DAILY RHYTHM
// ══════════════════════════════════════════════════════════════════════════════

// GetDailyRhythmQuery asks for the content of one civil date.
type GetDailyRhythmQuery struct {
	Birth birth.Info
	Date  time.Time
	Role  role.Role

	// ProfileID is set when the birth record came from storage.
	ProfileID string
}

// Validate checks the query parameters.
func (q *GetDailyRhythmQuery) Validate() error {
	if q.Date.IsZero() {
		return shared.NewDomainError("query", "GetDailyRhythm", shared.ErrEmptyValue, "date is required")
	}
	return validateRole("GetDailyRhythm", q.Role)
}

// GetDailyRhythmHandler serves GetDailyRhythmQuery.
type GetDailyRhythmHandler struct {
	pipeline *Pipeline
}

// NewGetDailyRhythmHandler creates the handler.
func NewGetDailyRhythmHandler(p *Pipeline) *GetDailyRhythmHandler {
	return &GetDailyRhythmHandler{pipeline: p}
}

// Handle runs the daily pipeline.
func (h *GetDailyRhythmHandler) Handle(ctx context.Context, q GetDailyRhythmQuery) (*Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	date := timeutil.DateOf(q.Date)
	return h.pipeline.day(ctx, run{op: "GetDailyRhythm", birth: q.Birth, target: date, role: q.Role, profileID: q.ProfileID}, date)
}

// ══════════════════════════════════════════════════════════════════════════════
// GET RANGE RHYTHM
// ══════════════════════════════════════════════════════════════════════════════

// GetRangeRhythmQuery asks for daily content over an inclusive date range.
type GetRangeRhythmQuery struct {
	Birth     birth.Info
	From, To  time.Time
	Role      role.Role
	ProfileID string
}

// Validate checks the query parameters against the longest allowed range.
func (q *GetRangeRhythmQuery) Validate(maxDays int) error {
	const op = "GetRangeRhythm"
	if q.From.IsZero() || q.To.IsZero() {
		return shared.NewDomainError("query", op, shared.ErrEmptyValue, "from and to are required")
	}
	from, to := timeutil.DateOf(q.From), timeutil.DateOf(q.To)
	if to.Before(from) {
		return shared.Validationf("query", op, shared.ErrInvalidInput,
			"range end %s is before start %s", timeutil.FormatDate(to), timeutil.FormatDate(from))
	}
	if n := timeutil.DaysBetween(from, to) + 1; n > maxDays {
		return shared.Validationf("query", op, shared.ErrValueOutOfRange,
			"range covers %d days, at most %d allowed", n, maxDays)
	}
	return validateRole(op, q.Role)
}

// RangeResult holds one document per day, ascending by date.
type RangeResult struct {
	From string      `json:"from"`
	To   string      `json:"to"`
	Days []*Document `json:"days"`
}

// GetRangeRhythmHandler serves GetRangeRhythmQuery.
type GetRangeRhythmHandler struct {
	pipeline *Pipeline
	maxDays  int
	workers  int
}

// NewGetRangeRhythmHandler creates the handler. Days are computed on at most
// workers goroutines.
func NewGetRangeRhythmHandler(p *Pipeline, maxDays, workers int) *GetRangeRhythmHandler {
	if workers < 1 {
		workers = 1
	}
	return &GetRangeRhythmHandler{pipeline: p, maxDays: maxDays, workers: workers}
}

// Handle runs the daily pipeline for every date in the range. The first
// failure cancels the remaining days.
func (h *GetRangeRhythmHandler) Handle(ctx context.Context, q GetRangeRhythmQuery) (*RangeResult, error) {
	if err := q.Validate(h.maxDays); err != nil {
		return nil, err
	}
	from, to := timeutil.DateOf(q.From), timeutil.DateOf(q.To)
	days := make([]*Document, timeutil.DaysBetween(from, to)+1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.workers)
	for i := range days {
		date := from.AddDate(0, 0, i)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := h.pipeline.day(gctx, run{op: "GetRangeRhythm", birth: q.Birth, target: date, role: q.Role, profileID: q.ProfileID}, date)
			if err != nil {
				return err
			}
			days[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &RangeResult{From: timeutil.FormatDate(from), To: timeutil.FormatDate(to), Days: days}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GET MONTHLY RHYTHM
// ══════════════════════════════════════════════════════════════════════════════

// GetMonthlyRhythmQuery asks for the content of a calendar month.
type GetMonthlyRhythmQuery struct {
	Birth       birth.Info
	Year, Month int
	Role        role.Role
	ProfileID   string
}

// GetMonthlyRhythmHandler serves GetMonthlyRhythmQuery.
type GetMonthlyRhythmHandler struct {
	pipeline *Pipeline
}

// NewGetMonthlyRhythmHandler creates the handler.
func NewGetMonthlyRhythmHandler(p *Pipeline) *GetMonthlyRhythmHandler {
	return &GetMonthlyRhythmHandler{pipeline: p}
}

// Handle runs the monthly pipeline. The chart is computed for the first of the month.
func (h *GetMonthlyRhythmHandler) Handle(ctx context.Context, q GetMonthlyRhythmQuery) (*Document, error) {
	const op = "GetMonthlyRhythm"
	if q.Month < 1 || q.Month > 12 {
		return nil, shared.Validationf("query", op, shared.ErrValueOutOfRange, "month %d outside [1,12]", q.Month)
	}
	if err := validateRole(op, q.Role); err != nil {
		return nil, err
	}
	target := timeutil.Date(q.Year, time.Month(q.Month), 1)
	return h.pipeline.month(ctx, run{op: op, birth: q.Birth, target: target, role: q.Role, profileID: q.ProfileID}, q.Year, q.Month)
}

// ══════════════════════════════════════════════════════════════════════════════
// GET YEARLY RHYTHM
// ══════════════════════════════════════════════════════════════════════════════

// GetYearlyRhythmQuery asks for the content of a calendar year.
type GetYearlyRhythmQuery struct {
	Birth     birth.Info
	Year      int
	Role      role.Role
	ProfileID string
}

// GetYearlyRhythmHandler serves GetYearlyRhythmQuery.
type GetYearlyRhythmHandler struct {
	pipeline *Pipeline
}

// NewGetYearlyRhythmHandler creates the handler.
func NewGetYearlyRhythmHandler(p *Pipeline) *GetYearlyRhythmHandler {
	return &GetYearlyRhythmHandler{pipeline: p}
}

// Handle runs the yearly pipeline. The chart is computed for January 1.
func (h *GetYearlyRhythmHandler) Handle(ctx context.Context, q GetYearlyRhythmQuery) (*Document, error) {
	const op = "GetYearlyRhythm"
	if err := validateRole(op, q.Role); err != nil {
		return nil, err
	}
	target := timeutil.Date(q.Year, time.January, 1)
	return h.pipeline.year(ctx, run{op: op, birth: q.Birth, target: target, role: q.Role, profileID: q.ProfileID}, q.Year)
}

func validateRole(op string, r role.Role) error {
	if !r.IsValid() {
		return shared.Validationf("query", op, shared.ErrUnsupportedRole, "unsupported role %q", string(r))
	}
	return nil
}
