package content

import (
	"fmt"
	"unicode/utf8"
)

// Budget is an inclusive length range in runes.
type Budget struct {
	Min int
	Max int
}

// Field budgets. Templates are authored to fit; the validator only reports.
var (
	SummaryBudget      = Budget{Min: 20, Max: 120}
	DescriptionBudget  = Budget{Min: 120, Max: 320}
	MeaningShiftBudget = Budget{Min: 60, Max: 240}
	QuestionBudget     = Budget{Min: 15, Max: 120}
	TriggerPartBudget  = Budget{Min: 10, Max: 100}
)

const (
	// ListItemMax bounds every list item.
	ListItemMax = 80

	// PrimaryPageMax bounds summary+description+meaning_shift+question, the
	// fields rendered together on one page.
	PrimaryPageMax = 720

	// MaxTimeItems bounds time and direction lists, which need at least one item.
	MaxTimeItems = 3
)

// ViolationKind separates missing or malformed structure from length overruns.
type ViolationKind string

const (
	ViolationStructural ViolationKind = "structural"
	ViolationBudget     ViolationKind = "budget"
)

// Violation is one itemized finding.
type Violation struct {
	Field   string        `json:"field"`
	Kind    ViolationKind `json:"kind"`
	Message string        `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s: %s", v.Kind, v.Field, v.Message)
}

// Report is the validator's verdict. Violations are in document order.
type Report struct {
	Violations []Violation `json:"violations"`
}

// OK reports whether the content passed every check.
func (r Report) OK() bool { return len(r.Violations) == 0 }

// Messages returns the violations as descriptive strings.
func (r Report) Messages() []string {
	out := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		out = append(out, v.String())
	}
	return out
}

// Count returns the number of violations of a kind.
func (r Report) Count(kind ViolationKind) int {
	n := 0
	for _, v := range r.Violations {
		if v.Kind == kind {
			n++
		}
	}
	return n
}

func (r *Report) add(field string, kind ViolationKind, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{Field: field, Kind: kind, Message: fmt.Sprintf(format, args...)})
}

var textBudgets = map[string]Budget{
	FieldSummary:      SummaryBudget,
	FieldDescription:  DescriptionBudget,
	FieldPosture:      TriggerPartBudget,
	FieldBreath:       TriggerPartBudget,
	FieldPhrase:       TriggerPartBudget,
	FieldMeaningShift: MeaningShiftBudget,
	FieldQuestion:     QuestionBudget,
}

// listBounds are inclusive cardinality bounds per list field.
var listBounds = map[string]Budget{
	FieldKeywords:   {Min: ListSize, Max: ListSize},
	FieldFocus:      {Min: ListSize, Max: ListSize},
	FieldCaution:    {Min: ListSize, Max: ListSize},
	FieldDo:         {Min: ListSize, Max: ListSize},
	FieldAvoid:      {Min: ListSize, Max: ListSize},
	FieldBestTimes:  {Min: 1, Max: MaxTimeItems},
	FieldAvoidTimes: {Min: 1, Max: MaxTimeItems},
	FieldDirections: {Min: 1, Max: MaxTimeItems},
}

// Validate checks content against its schema. Every check runs; nothing short-circuits.
func Validate(c Content) Report {
	var r Report

	if c.Scale == "" {
		r.add(FieldScale, ViolationStructural, "missing")
	}
	if c.Period == "" {
		r.add(FieldPeriod, ViolationStructural, "missing")
	}
	if c.Theme == "" {
		r.add(FieldTheme, ViolationStructural, "missing")
	}
	if err := c.Scores.Validate(); err != nil {
		r.add(FieldScores, ViolationStructural, "%v", err)
	}

	for _, f := range c.TextFields() {
		n := utf8.RuneCountInString(f.Value)
		if n == 0 {
			r.add(f.Key, ViolationStructural, "missing")
			continue
		}
		b := textBudgets[f.Key]
		if n < b.Min || n > b.Max {
			r.add(f.Key, ViolationBudget, "%d characters, budget %d-%d", n, b.Min, b.Max)
		}
	}

	for _, f := range c.ListFields() {
		b := listBounds[f.Key]
		if len(f.Items) == 0 {
			r.add(f.Key, ViolationStructural, "missing")
			continue
		}
		if len(f.Items) < b.Min || len(f.Items) > b.Max {
			r.add(f.Key, ViolationStructural, "%d items, want %d-%d", len(f.Items), b.Min, b.Max)
		}
		for i, item := range f.Items {
			n := utf8.RuneCountInString(item)
			switch {
			case n == 0:
				r.add(f.Key, ViolationStructural, "item %d is empty", i+1)
			case n > ListItemMax:
				r.add(f.Key, ViolationBudget, "item %d has %d characters, max %d", i+1, n, ListItemMax)
			}
		}
	}

	if n := PrimaryPageLength(c); n > PrimaryPageMax {
		r.add("primary_page", ViolationBudget, "%d characters, max %d", n, PrimaryPageMax)
	}
	return r
}

// PrimaryPageLength is the rune count of the fields rendered on the primary page.
func PrimaryPageLength(c Content) int {
	return utf8.RuneCountInString(c.Summary) +
		utf8.RuneCountInString(c.Description) +
		utf8.RuneCountInString(c.MeaningShift) +
		utf8.RuneCountInString(c.Question)
}
