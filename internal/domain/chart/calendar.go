package chart

import (
	"time"

	"github.com/rhythm-hub/rhythm-core/pkg/timeutil"
)

// Supported calendar range, inclusive. Both birth and target dates must fall inside.
const (
	MinYear = 1900
	MaxYear = 2100
)

// jieDay holds the fixed Gregorian day on which each month's solar term (節) is taken to
// fall, indexed by month-1. The twelve-term approximation keeps month boundaries stable
// across years; real term instants drift by at most a day around these dates.
var jieDay = [12]int{6, 4, 6, 5, 6, 6, 7, 8, 8, 8, 7, 7}

// epochDayIndex is the sexagenary index of 1970-01-01 (辛巳).
const epochDayIndex = 17

// solarYear returns the year whose 立春 (Feb 4) most recently began on or before the date.
func solarYear(d time.Time) int {
	if d.Month() < time.February || (d.Month() == time.February && d.Day() < jieDay[1]) {
		return d.Year() - 1
	}
	return d.Year()
}

// monthBranch returns the branch of the solar month in force on the date.
// The term in Gregorian month m opens branch m mod 12 (Jan → 丑, Feb → 寅, ..., Dec → 子).
func monthBranch(d time.Time) Branch {
	m := int(d.Month())
	if d.Day() >= jieDay[m-1] {
		return Branch(m % BranchCount)
	}
	return Branch((m - 1) % BranchCount)
}

// YearPillar returns the year pillar in force on the civil date d.
func YearPillar(d time.Time) Pillar {
	y := solarYear(d)
	return Pillar{Stem: Stem(mod(y-4, StemCount)), Branch: Branch(mod(y-4, BranchCount))}
}

// MonthPillar returns the month pillar in force on the civil date d.
// Stems follow the five-tigers rule: the 寅 month of a 甲/己 year is 丙寅, and so on.
func MonthPillar(d time.Time) Pillar {
	yearStem := YearPillar(d).Stem
	branch := monthBranch(d)
	tiger := (int(yearStem)%5)*2 + 2
	offset := mod(int(branch)-2, BranchCount)
	return Pillar{Stem: Stem(mod(tiger+offset, StemCount)), Branch: branch}
}

// DayPillar returns the day pillar of the civil date d.
func DayPillar(d time.Time) Pillar {
	return PillarAt(int(timeutil.DayNumber(d)) + epochDayIndex)
}

// HourPillar returns the hour pillar for a clock hour on a day with the given day stem.
//
// The 子 hour straddles midnight. Between 23:00 and 23:59 the calendar day keeps its
// own day pillar, and the hour stem is taken from the following day's 子 hour.
func HourPillar(dayStem Stem, hour int) Pillar {
	branch := HourBranch(hour)
	stemBase := dayStem
	if hour == 23 {
		stemBase = Stem(mod(int(dayStem)+1, StemCount))
	}
	start := (int(stemBase) % 5) * 2
	return Pillar{Stem: Stem(mod(start+int(branch), StemCount)), Branch: branch}
}

// InSupportedRange reports whether the civil date lies inside MinYear..MaxYear.
func InSupportedRange(d time.Time) bool {
	return d.Year() >= MinYear && d.Year() <= MaxYear
}

// termBoundary returns the civil date of the solar term that opens Gregorian month m of year y.
func termBoundary(y int, m time.Month) time.Time {
	return timeutil.Date(y, m, jieDay[m-1])
}

// nextTerm returns the first term boundary strictly after d.
func nextTerm(d time.Time) time.Time {
	b := termBoundary(d.Year(), d.Month())
	if b.After(d) {
		return b
	}
	next := d.AddDate(0, 0, -d.Day()+1).AddDate(0, 1, 0)
	return termBoundary(next.Year(), next.Month())
}

// previousTerm returns the latest term boundary on or before d.
func previousTerm(d time.Time) time.Time {
	b := termBoundary(d.Year(), d.Month())
	if !b.After(d) {
		return b
	}
	prev := d.AddDate(0, 0, -d.Day()+1).AddDate(0, -1, 0)
	return termBoundary(prev.Year(), prev.Month())
}
