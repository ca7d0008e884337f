// Package timeutil provides civil-date and civil-time helpers for rhythm computation.
// All calendar dates are represented as time.Time values at 00:00 UTC so that
// date arithmetic never depends on the host time zone.
package timeutil

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// KSTOffsetMinutes is the offset of Korea Standard Time (UTC+9, meridian 135°E).
const KSTOffsetMinutes = 9 * 60

// KST is the fixed Korea Standard Time zone. No DST is applied, historical or otherwise.
var KST = time.FixedZone("KST", KSTOffsetMinutes*60)

// DateLayout is the ISO calendar-date layout used at every boundary.
const DateLayout = "2006-01-02"

// Date creates a civil date (00:00 UTC).
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates t to its civil date, read in t's own location.
func DateOf(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// DaysIn returns the number of days in the given month using Gregorian leap rules.
func DaysIn(year int, month time.Month) int {
	return Date(year, month+1, 0).Day()
}

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DayNumber returns the number of whole days between 1970-01-01 and the civil date of t.
func DayNumber(t time.Time) int64 {
	d := DateOf(t)
	return d.Unix() / 86400
}

// DaysBetween returns the signed number of days from a to b (civil dates).
func DaysBetween(a, b time.Time) int {
	return int(DayNumber(b) - DayNumber(a))
}

// ParseDate parses an ISO date (YYYY-MM-DD) into a civil date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}

// ParseClock parses "HH:MM" or "HH:MM:SS" into hour and minute.
func ParseClock(value string) (hour, minute int, err error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, perr := time.Parse(layout, value); perr == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("invalid time %q: expected HH:MM", value)
}

// FormatDate formats a civil date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FixedZone returns a zone with the given UTC offset in minutes.
func FixedZone(offsetMinutes int) *time.Location {
	if offsetMinutes == KSTOffsetMinutes {
		return KST
	}
	sign := "+"
	abs := offsetMinutes
	if abs < 0 {
		sign = "-"
		abs = -abs
	}
	return time.FixedZone(fmt.Sprintf("UTC%s%02d:%02d", sign, abs/60, abs%60), offsetMinutes*60)
}

// StandardMeridian returns the longitude (degrees east) whose mean solar time
// equals civil time for the given UTC offset.
func StandardMeridian(offsetMinutes int) float64 {
	return float64(offsetMinutes) / 4
}

// SolarCorrection returns the local mean solar time correction for a longitude:
// four minutes per degree of distance from the zone's standard meridian, rounded
// to the whole minute.
func SolarCorrection(longitude float64, offsetMinutes int) time.Duration {
	minutes := (longitude - StandardMeridian(offsetMinutes)) * 4
	return time.Duration(math.Round(minutes)) * time.Minute
}
