// Package rhythm implements the rhythm analyzer: it relates the pillar of a target
// day, month or year to a birth chart's day master and turns that relation into
// four integer scores, time windows, directions and thematic keywords.
//
// Analysis is pure. The chart is passed in explicitly so tests can feed synthetic
// charts without running the calculator.
package rhythm

import (
	"time"

	"github.com/rhythm-hub/rhythm-core/internal/domain/birth"
	"github.com/rhythm-hub/rhythm-core/internal/domain/chart"
	"github.com/rhythm-hub/rhythm-core/internal/domain/shared"
	"github.com/rhythm-hub/rhythm-core/pkg/timeutil"
)

// Analyzer derives day-, month- and year-scale signals. It holds no state.
type Analyzer struct{}

// NewAnalyzer creates an analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// AnalyzeDay derives the signal of a single civil date.
func (a *Analyzer) AnalyzeDay(b birth.Info, date time.Time, c chart.Chart) (Signal, error) {
	const op = "AnalyzeDay"

	d := timeutil.DateOf(date)
	if date.IsZero() || !chart.InSupportedRange(d) {
		return Signal{}, shared.Validationf("rhythm", op, shared.ErrValueOutOfRange,
			"date %s outside supported range %d-%d", timeutil.FormatDate(d), chart.MinYear, chart.MaxYear)
	}

	sig, err := a.signalFor(op, c, chart.DayPillar(d))
	if err != nil {
		return Signal{}, err
	}
	sig.Scale = ScaleDay
	sig.Date = d
	sig.Year = d.Year()
	sig.Month = int(d.Month())
	return sig, nil
}

// AnalyzeMonth derives the signal of a calendar month, including the energy of
// every day 1..N of that month.
func (a *Analyzer) AnalyzeMonth(b birth.Info, year, month int, c chart.Chart) (Signal, error) {
	const op = "AnalyzeMonth"

	if err := checkYear(op, year); err != nil {
		return Signal{}, err
	}
	if month < 1 || month > 12 {
		return Signal{}, shared.Validationf("rhythm", op, shared.ErrValueOutOfRange, "month %d outside [1,12]", month)
	}

	// The month pillar in force mid-month names the month.
	mid := timeutil.Date(year, time.Month(month), 15)
	sig, err := a.signalFor(op, c, chart.MonthPillar(mid))
	if err != nil {
		return Signal{}, err
	}
	sig.Scale = ScaleMonth
	sig.Year = year
	sig.Month = month

	days, err := a.dayEnergy(op, c, year, time.Month(month))
	if err != nil {
		return Signal{}, err
	}
	sig.DayEnergy = days
	return sig, nil
}

// AnalyzeYear derives the signal of a calendar year, including a summary of each
// of its twelve months and, when available, the active decade period.
func (a *Analyzer) AnalyzeYear(b birth.Info, year int, c chart.Chart) (Signal, error) {
	const op = "AnalyzeYear"

	if err := checkYear(op, year); err != nil {
		return Signal{}, err
	}

	// The year pillar in force at mid-year names the year.
	mid := timeutil.Date(year, time.July, 1)
	sig, err := a.signalFor(op, c, chart.YearPillar(mid))
	if err != nil {
		return Signal{}, err
	}
	sig.Scale = ScaleYear
	sig.Year = year

	months := make([]MonthSummary, 0, 12)
	for m := 1; m <= 12; m++ {
		p := chart.MonthPillar(timeutil.Date(year, time.Month(m), 15))
		ev, ok := evaluate(c, p)
		if !ok {
			return Signal{}, shared.Computationf("rhythm", op, "no rubric entry for month %d pillar %s", m, p)
		}
		months = append(months, MonthSummary{Month: m, Pillar: p, Scores: ev.scores, Theme: ev.theme})
	}
	sig.Months = months

	age := year - c.BirthYear()
	if period, ok := c.Decades.ActiveAt(age); ok {
		sig.ActiveDecade = &period
	}
	return sig, nil
}

func (a *Analyzer) signalFor(op string, c chart.Chart, target chart.Pillar) (Signal, error) {
	if !target.IsValid() {
		return Signal{}, shared.Computationf("rhythm", op, "target pillar %d/%d is not in the sexagenary cycle", target.Stem, target.Branch)
	}
	if !c.DayMasterElement.IsValid() {
		return Signal{}, shared.Computationf("rhythm", op, "chart day master element %d is invalid", c.DayMasterElement)
	}

	ev, ok := evaluate(c, target)
	if !ok {
		return Signal{}, shared.Computationf("rhythm", op, "no rubric entry for pillar %s", target)
	}
	if err := ev.scores.Validate(); err != nil {
		return Signal{}, shared.WrapError("rhythm", op, shared.ErrComputation, "score invariant violated", err)
	}

	good, bad := timeWindows(c, target.Branch)
	return Signal{
		Pillar:              target,
		Relation:            ev.relation,
		Scores:              ev.scores,
		FavorableTimes:      good,
		UnfavorableTimes:    bad,
		FavorableDirections: directions(c),
		Theme:               ev.theme,
		Opportunities:       ev.opportunities,
		Challenges:          ev.challenges,
	}, nil
}

func (a *Analyzer) dayEnergy(op string, c chart.Chart, year int, month time.Month) ([]DayEnergy, error) {
	n := timeutil.DaysIn(year, month)
	out := make([]DayEnergy, 0, n)
	for day := 1; day <= n; day++ {
		d := timeutil.Date(year, month, day)
		ev, ok := evaluate(c, chart.DayPillar(d))
		if !ok {
			return nil, shared.Computationf("rhythm", op, "no rubric entry for %s", timeutil.FormatDate(d))
		}
		out = append(out, DayEnergy{Day: day, Energy: ev.scores.Energy})
	}

	// The map must agree with the calendar: N entries ending on the month's last day.
	last := timeutil.Date(year, month+1, 0)
	if len(out) != last.Day() || out[len(out)-1].Day != last.Day() {
		return nil, shared.Computationf("rhythm", op, "day map has %d entries, calendar has %d", len(out), last.Day())
	}
	return out, nil
}

func checkYear(op string, year int) error {
	if year < chart.MinYear || year > chart.MaxYear {
		return shared.Validationf("rhythm", op, shared.ErrValueOutOfRange,
			"year %d outside supported range %d-%d", year, chart.MinYear, chart.MaxYear)
	}
	return nil
}
