package rhythm

import (
	"fmt"
	"time"

	"github.com/rhythm-hub/rhythm-core/internal/domain/chart"
	"github.com/rhythm-hub/rhythm-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCORES
// ══════════════════════════════════════════════════════════════════════════════

// Score is an integer signal in [MinScore, MaxScore]. It doubles as the signal
// bucket used to index template and keyword pools.
type Score int

const (
	MinScore Score = 1
	MaxScore Score = 5

	// NeutralScore is the explicit default of every axis before relations apply,
	// and the value an axis keeps when a relation is ambiguous.
	NeutralScore Score = 3
)

// IsValid reports whether the score lies in [1,5].
func (s Score) IsValid() bool { return s >= MinScore && s <= MaxScore }

// Int returns the underlying value.
func (s Score) Int() int { return int(s) }

func clamp(v int) Score {
	if v < int(MinScore) {
		return MinScore
	}
	if v > int(MaxScore) {
		return MaxScore
	}
	return Score(v)
}

// Scores holds the four wellbeing axes.
type Scores struct {
	Energy   Score `json:"energy"`
	Focus    Score `json:"focus"`
	Social   Score `json:"social"`
	Decision Score `json:"decision"`
}

// NeutralScores returns all axes at NeutralScore.
func NeutralScores() Scores {
	return Scores{Energy: NeutralScore, Focus: NeutralScore, Social: NeutralScore, Decision: NeutralScore}
}

// Validate returns an error naming the first axis outside [1,5].
func (s Scores) Validate() error {
	for _, axis := range []struct {
		name  string
		value Score
	}{
		{"energy", s.Energy},
		{"focus", s.Focus},
		{"social", s.Social},
		{"decision", s.Decision},
	} {
		if !axis.value.IsValid() {
			return fmt.Errorf("%s score %d outside [%d,%d]", axis.name, axis.value, MinScore, MaxScore)
		}
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SIGNAL
// ══════════════════════════════════════════════════════════════════════════════

// Scale is the granularity of a signal.
type Scale string

const (
	ScaleDay   Scale = "day"
	ScaleMonth Scale = "month"
	ScaleYear  Scale = "year"
)

// Direction is a compass direction associated with an element.
type Direction string

const (
	DirectionEast   Direction = "east"
	DirectionSouth  Direction = "south"
	DirectionCenter Direction = "center"
	DirectionWest   Direction = "west"
	DirectionNorth  Direction = "north"
)

var elementDirections = [chart.ElementCount]Direction{
	DirectionEast, DirectionSouth, DirectionCenter, DirectionWest, DirectionNorth,
}

// DirectionOf returns the compass direction of an element.
func DirectionOf(e chart.Element) Direction { return elementDirections[e] }

// DayEnergy is one entry of a month's per-day energy map.
type DayEnergy struct {
	Day    int   `json:"day"`
	Energy Score `json:"energy"`
}

// MonthSummary is one entry of a year's per-month signal map.
type MonthSummary struct {
	Month  int          `json:"month"`
	Pillar chart.Pillar `json:"pillar"`
	Scores Scores       `json:"scores"`
	Theme  string       `json:"theme"`
}

// Signal is the derived rhythm of a day, month or year for one chart.
type Signal struct {
	Scale Scale `json:"scale"`

	// Date is set for day signals; Year for every scale; Month for day and month signals.
	Date  time.Time `json:"date,omitempty"`
	Year  int       `json:"year"`
	Month int       `json:"month,omitempty"`

	Pillar   chart.Pillar   `json:"pillar"`
	Relation chart.Relation `json:"relation"`
	Scores   Scores         `json:"scores"`

	FavorableTimes      []chart.TimeWindow `json:"favorable_times"`
	UnfavorableTimes    []chart.TimeWindow `json:"unfavorable_times"`
	FavorableDirections []Direction        `json:"favorable_directions"`

	Theme         string   `json:"theme"`
	Opportunities []string `json:"opportunities"`
	Challenges    []string `json:"challenges"`

	// DayEnergy covers days 1..N of a month signal, ascending.
	DayEnergy []DayEnergy `json:"day_energy,omitempty"`

	// Months covers months 1..12 of a year signal, ascending.
	Months []MonthSummary `json:"months,omitempty"`

	// ActiveDecade is set on year signals when the chart carries decade data
	// and the target year falls inside one of its periods.
	ActiveDecade *chart.DecadePeriod `json:"active_decade,omitempty"`
}

// Period returns a stable label for the signal's period: 2026-01-21, 2026-01 or 2026.
func (s Signal) Period() string {
	switch s.Scale {
	case ScaleDay:
		return timeutil.FormatDate(s.Date)
	case ScaleMonth:
		return fmt.Sprintf("%04d-%02d", s.Year, s.Month)
	default:
		return fmt.Sprintf("%04d", s.Year)
	}
}

// EnergyOn returns the energy of a given day of a month signal.
func (s Signal) EnergyOn(day int) (Score, bool) {
	if day < 1 || day > len(s.DayEnergy) {
		return 0, false
	}
	e := s.DayEnergy[day-1]
	return e.Energy, e.Day == day
}
