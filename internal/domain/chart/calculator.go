// Package chart implements the calendrical/elemental calculator: it maps a birth
// instant onto the four pillars of the sexagenary calendar, scores five-element
// balance, classifies day-master strength and derives favorable elements.
//
// Everything here is a pure function of its inputs. The lookup tables are
// package-level arrays that are never written after initialization, so a single
// Calculator may be shared by any number of goroutines.
package chart

import (
	"time"

	"github.com/rhythm-hub/rhythm-core/internal/domain/birth"
	"github.com/rhythm-hub/rhythm-core/internal/domain/shared"
	"github.com/rhythm-hub/rhythm-core/pkg/timeutil"
)

// Pillars holds the year, month, day and hour pillars.
type Pillars struct {
	Year  Pillar `json:"year"`
	Month Pillar `json:"month"`
	Day   Pillar `json:"day"`
	Hour  Pillar `json:"hour"`
}

// All returns the pillars in year, month, day, hour order.
func (p Pillars) All() [4]Pillar {
	return [4]Pillar{p.Year, p.Month, p.Day, p.Hour}
}

// Chart is the derived, immutable birth chart keyed by (birth info, target date).
type Chart struct {
	Pillars Pillars `json:"pillars"`
	Balance Balance `json:"balance"`

	DayMaster        Stem     `json:"day_master"`
	DayMasterElement Element  `json:"day_master_element"`
	Strength         Strength `json:"strength"`
	SupportPercent   int      `json:"support_percent"`

	Favorable   []Element `json:"favorable"`
	Unfavorable []Element `json:"unfavorable"`

	// Decades is nil when decade progression was not derived.
	Decades *Decades `json:"decades,omitempty"`

	// SolarTime is the birth wall-clock after mean solar correction.
	SolarTime      time.Time `json:"solar_time"`
	SolarCorrected bool      `json:"solar_corrected"`

	TargetDate time.Time `json:"target_date"`
}

// DayBranch returns the natal day branch.
func (c Chart) DayBranch() Branch { return c.Pillars.Day.Branch }

// IsFavorable reports whether e is in the favorable set.
func (c Chart) IsFavorable(e Element) bool { return ContainsElement(c.Favorable, e) }

// IsUnfavorable reports whether e is in the unfavorable set.
func (c Chart) IsUnfavorable(e Element) bool { return ContainsElement(c.Unfavorable, e) }

// BirthYear returns the civil year of the (solar-corrected) birth date.
func (c Chart) BirthYear() int { return c.SolarTime.Year() }

// Calculator computes charts. It holds no mutable state.
type Calculator struct {
	withDecades bool
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithoutDecades disables decade progression; charts then carry Decades == nil.
func WithoutDecades() Option {
	return func(c *Calculator) { c.withDecades = false }
}

// NewCalculator creates a calculator.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{withDecades: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ComputeChart maps a birth record and a target date onto a chart.
// Identical inputs always yield an identical chart.
func (c *Calculator) ComputeChart(b birth.Info, target time.Time) (Chart, error) {
	const op = "ComputeChart"

	if err := b.Validate(); err != nil {
		return Chart{}, err
	}

	solar, corrected := b.SolarInstant()
	birthDate := timeutil.Date(solar.Year(), solar.Month(), solar.Day())
	if !InSupportedRange(birthDate) || !InSupportedRange(b.Date) {
		return Chart{}, shared.Validationf("chart", op, shared.ErrValueOutOfRange,
			"birth date %s outside supported range %d-%d", timeutil.FormatDate(b.Date), MinYear, MaxYear)
	}
	targetDate := timeutil.DateOf(target)
	if target.IsZero() || !InSupportedRange(targetDate) {
		return Chart{}, shared.Validationf("chart", op, shared.ErrValueOutOfRange,
			"target date %s outside supported range %d-%d", timeutil.FormatDate(targetDate), MinYear, MaxYear)
	}

	pillars := Pillars{
		Year:  YearPillar(birthDate),
		Month: MonthPillar(birthDate),
		Day:   DayPillar(birthDate),
	}
	pillars.Hour = HourPillar(pillars.Day.Stem, solar.Hour())

	for _, p := range pillars.All() {
		if !p.IsValid() {
			return Chart{}, shared.Computationf("chart", op, "pillar %d/%d is not in the sexagenary cycle", p.Stem, p.Branch)
		}
	}

	balance := ComputeBalance(pillars)
	if balance.Total() != BalanceTotal {
		return Chart{}, shared.Computationf("chart", op, "element balance sums to %d, want %d", balance.Total(), BalanceTotal)
	}

	dm := pillars.Day.Stem.Element()
	strength := ClassifyStrength(balance, dm)
	favorable, unfavorable := ElementPreference(dm, strength)
	for _, e := range favorable {
		if ContainsElement(unfavorable, e) {
			return Chart{}, shared.Computationf("chart", op, "element %s is both favorable and unfavorable", e)
		}
	}

	out := Chart{
		Pillars:          pillars,
		Balance:          balance,
		DayMaster:        pillars.Day.Stem,
		DayMasterElement: dm,
		Strength:         strength,
		SupportPercent:   SupportPercent(balance, dm),
		Favorable:        favorable,
		Unfavorable:      unfavorable,
		SolarTime:        time.Date(solar.Year(), solar.Month(), solar.Day(), solar.Hour(), solar.Minute(), 0, 0, time.UTC),
		SolarCorrected:   corrected,
		TargetDate:       targetDate,
	}
	if c.withDecades {
		out.Decades = ComputeDecades(birthDate, pillars.Month, pillars.Year.Stem, b.Gender)
	}
	return out, nil
}
