package chart

import (
	"math"
	"time"

	"github.com/rhythm-hub/rhythm-core/internal/domain/birth"
	"github.com/rhythm-hub/rhythm-core/pkg/timeutil"
)

// DecadeCount is the number of decade periods derived for a chart.
const DecadeCount = 8

// Direction is the direction in which decade pillars step through the cycle.
type Direction string

const (
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
)

// DecadePeriod is one ten-year progression segment.
type DecadePeriod struct {
	Index    int    `json:"index"`
	Pillar   Pillar `json:"pillar"`
	Label    string `json:"label"`
	StartAge int    `json:"start_age"`
	EndAge   int    `json:"end_age"`
}

// Contains reports whether an age falls inside the period.
func (d DecadePeriod) Contains(age int) bool {
	return age >= d.StartAge && age <= d.EndAge
}

// Decades is the decade-level progression of a chart.
type Decades struct {
	Direction Direction      `json:"direction"`
	StartAge  int            `json:"start_age"`
	Periods   []DecadePeriod `json:"periods"`
}

// ActiveAt returns the period covering the given age, if any.
func (d *Decades) ActiveAt(age int) (DecadePeriod, bool) {
	if d == nil {
		return DecadePeriod{}, false
	}
	for _, p := range d.Periods {
		if p.Contains(age) {
			return p, true
		}
	}
	return DecadePeriod{}, false
}

// DecadeDirection is the only place gender enters the chart: a male with a yang
// year stem or a female with a yin year stem progresses forward.
func DecadeDirection(g birth.Gender, yearStem Stem) Direction {
	yang := yearStem.IsYang()
	if (g == birth.GenderMale && yang) || (g == birth.GenderFemale && !yang) {
		return DirectionForward
	}
	return DirectionBackward
}

// ComputeDecades derives decade periods from the (solar-corrected) birth date,
// the month pillar, the year stem and gender. Start age is the day distance to
// the next (forward) or previous (backward) solar term divided by three,
// rounded half up, and never below one.
func ComputeDecades(birthDate time.Time, month Pillar, yearStem Stem, g birth.Gender) *Decades {
	dir := DecadeDirection(g, yearStem)

	var days int
	step := 1
	if dir == DirectionForward {
		days = timeutil.DaysBetween(birthDate, nextTerm(birthDate))
	} else {
		days = timeutil.DaysBetween(previousTerm(birthDate), birthDate)
		step = -1
	}

	startAge := int(math.Floor(float64(days)/3 + 0.5))
	if startAge < 1 {
		startAge = 1
	}

	base := month.Index()
	periods := make([]DecadePeriod, 0, DecadeCount)
	for i := 0; i < DecadeCount; i++ {
		p := PillarAt(base + step*(i+1))
		start := startAge + 10*i
		periods = append(periods, DecadePeriod{
			Index:    i + 1,
			Pillar:   p,
			Label:    p.Label(),
			StartAge: start,
			EndAge:   start + 9,
		})
	}

	return &Decades{Direction: dir, StartAge: startAge, Periods: periods}
}
