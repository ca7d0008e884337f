// Package birth contains the birth-information value object consumed by the chart calculator.
// A BirthInfo is created once, at profile creation time, and never mutated.
package birth

import (
	"strings"
	"time"

	"github.com/rhythm-hub/rhythm-core/internal/domain/shared"
	"github.com/rhythm-hub/rhythm-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Gender is the closed gender enumeration. It only steers decade progression.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// IsValid reports whether g is one of the enumerated values.
func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale:
		return true
	default:
		return false
	}
}

// ParseGender parses a gender token.
func ParseGender(token string) (Gender, error) {
	g := Gender(strings.ToLower(strings.TrimSpace(token)))
	if !g.IsValid() {
		return "", shared.Validationf("birth", "ParseGender", shared.ErrInvalidInput,
			"gender must be %q or %q, got %q", GenderMale, GenderFemale, token)
	}
	return g, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Clock is a wall-clock time of day with minute precision.
type Clock struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// IsValid reports whether the clock is within 00:00..23:59.
func (c Clock) IsValid() bool {
	return c.Hour >= 0 && c.Hour < 24 && c.Minute >= 0 && c.Minute < 60
}

// String formats the clock as HH:MM.
func (c Clock) String() string {
	return time.Date(2000, 1, 1, c.Hour, c.Minute, 0, 0, time.UTC).Format("15:04")
}

// Place is the birth place. Coordinates are optional; when absent the gazetteer is consulted.
type Place struct {
	Name      string   `json:"name"`
	Latitude  *float64 `json:"lat,omitempty"`
	Longitude *float64 `json:"lng,omitempty"`

	// UTCOffsetMinutes is the civil offset the birth time was recorded in (default +540, KST).
	UTCOffsetMinutes *int `json:"utc_offset_minutes,omitempty"`
}

// Offset returns the civil UTC offset in minutes.
func (p Place) Offset() int {
	if p.UTCOffsetMinutes == nil {
		return timeutil.KSTOffsetMinutes
	}
	return *p.UTCOffsetMinutes
}

// ResolveLongitude resolves the place longitude from explicit coordinates or the gazetteer.
func (p Place) ResolveLongitude() (float64, bool) {
	if p.Longitude != nil {
		return *p.Longitude, true
	}
	if c, ok := LookupPlace(p.Name); ok {
		return c.Longitude, true
	}
	return 0, false
}

func (p Place) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return shared.NewDomainError("birth", "ValidatePlace", shared.ErrEmptyValue,
			"birth place name is required for time-zone correction")
	}
	if (p.Latitude == nil) != (p.Longitude == nil) {
		return shared.NewDomainError("birth", "ValidatePlace", shared.ErrInvalidInput,
			"latitude and longitude must be given together")
	}
	if p.Latitude != nil && (*p.Latitude < -90 || *p.Latitude > 90) {
		return shared.Validationf("birth", "ValidatePlace", shared.ErrValueOutOfRange,
			"latitude %.4f outside [-90, 90]", *p.Latitude)
	}
	if p.Longitude != nil && (*p.Longitude < -180 || *p.Longitude > 180) {
		return shared.Validationf("birth", "ValidatePlace", shared.ErrValueOutOfRange,
			"longitude %.4f outside [-180, 180]", *p.Longitude)
	}
	if off := p.Offset(); off < -12*60 || off > 14*60 {
		return shared.Validationf("birth", "ValidatePlace", shared.ErrValueOutOfRange,
			"utc offset %d minutes outside [-720, 840]", off)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN VALUE: INFO
// ══════════════════════════════════════════════════════════════════════════════

// Info is the immutable birth record supplied by the caller.
type Info struct {
	Name   string    `json:"name"`
	Date   time.Time `json:"date"`
	Time   Clock     `json:"time"`
	Gender Gender    `json:"gender"`
	Place  Place     `json:"place"`
}

// NewInfoParams holds the raw fields of a birth record as received at the boundary.
type NewInfoParams struct {
	Name      string
	BirthDate string // YYYY-MM-DD
	BirthTime string // HH:MM or HH:MM:SS
	Gender    string
	PlaceName string
	Latitude  *float64
	Longitude *float64
	UTCOffset *int
}

// NewInfo parses and validates a birth record.
func NewInfo(p NewInfoParams) (Info, error) {
	date, err := timeutil.ParseDate(p.BirthDate)
	if err != nil {
		return Info{}, shared.WrapError("birth", "NewInfo", shared.ErrInvalidFormat, "bad birth date", err)
	}
	hour, minute, err := timeutil.ParseClock(p.BirthTime)
	if err != nil {
		return Info{}, shared.WrapError("birth", "NewInfo", shared.ErrInvalidFormat, "bad birth time", err)
	}
	gender, err := ParseGender(p.Gender)
	if err != nil {
		return Info{}, err
	}

	info := Info{
		Name:   strings.TrimSpace(p.Name),
		Date:   date,
		Time:   Clock{Hour: hour, Minute: minute},
		Gender: gender,
		Place: Place{
			Name:             strings.TrimSpace(p.PlaceName),
			Latitude:         p.Latitude,
			Longitude:        p.Longitude,
			UTCOffsetMinutes: p.UTCOffset,
		},
	}
	if err := info.Validate(); err != nil {
		return Info{}, err
	}
	return info, nil
}

// Validate checks the structural validity of the record. Calendar range is
// checked by the calculator, which owns the supported range.
func (i Info) Validate() error {
	if i.Name == "" {
		return shared.NewDomainError("birth", "Validate", shared.ErrEmptyValue, "name is required")
	}
	if len([]rune(i.Name)) > 100 {
		return shared.NewDomainError("birth", "Validate", shared.ErrValueOutOfRange, "name longer than 100 characters")
	}
	if i.Date.IsZero() {
		return shared.NewDomainError("birth", "Validate", shared.ErrEmptyValue, "birth date is required")
	}
	if !i.Time.IsValid() {
		return shared.Validationf("birth", "Validate", shared.ErrValueOutOfRange, "birth time %02d:%02d is not a valid clock time", i.Time.Hour, i.Time.Minute)
	}
	if !i.Gender.IsValid() {
		return shared.Validationf("birth", "Validate", shared.ErrInvalidInput, "invalid gender %q", i.Gender)
	}
	return i.Place.validate()
}

// LocalInstant returns the birth instant in the place's civil zone.
func (i Info) LocalInstant() time.Time {
	return time.Date(i.Date.Year(), i.Date.Month(), i.Date.Day(),
		i.Time.Hour, i.Time.Minute, 0, 0, timeutil.FixedZone(i.Place.Offset()))
}

// SolarInstant returns the birth instant corrected to local mean solar time,
// expressed as a wall clock (the zone is kept so the reading stays civil-looking).
// When no longitude can be resolved the civil instant is returned unchanged.
func (i Info) SolarInstant() (time.Time, bool) {
	local := i.LocalInstant()
	lng, ok := i.Place.ResolveLongitude()
	if !ok {
		return local, false
	}
	return local.Add(timeutil.SolarCorrection(lng, i.Place.Offset())), true
}
