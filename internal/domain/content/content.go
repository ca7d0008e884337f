// Package content turns rhythm signals into structured, length-bounded documents
// and checks documents against their schema.
//
// All text comes from a closed set of templates. Renderers address fields by the
// JSON keys declared here, so those keys are a stable contract.
package content

import (
	"github.com/rhythm-hub/rhythm-core/internal/domain/rhythm"
)

// Stable field keys. Nested fields are addressed as parent.child.
const (
	FieldScale        = "scale"
	FieldPeriod       = "period"
	FieldTheme        = "theme"
	FieldScores       = "scores"
	FieldSummary      = "summary"
	FieldKeywords     = "keywords"
	FieldDescription  = "description"
	FieldFocus        = "focus.focus"
	FieldCaution      = "focus.caution"
	FieldDo           = "actions.do"
	FieldAvoid        = "actions.avoid"
	FieldBestTimes    = "time_direction.best_times"
	FieldAvoidTimes   = "time_direction.avoid_times"
	FieldDirections   = "time_direction.directions"
	FieldPosture      = "state_trigger.posture"
	FieldBreath       = "state_trigger.breath"
	FieldPhrase       = "state_trigger.phrase"
	FieldMeaningShift = "meaning_shift"
	FieldQuestion     = "question"
)

// FocusBlock pairs what to lean into with what to watch for.
type FocusBlock struct {
	Focus   []string `json:"focus"`
	Caution []string `json:"caution"`
}

// ActionBlock pairs recommended and discouraged actions.
type ActionBlock struct {
	Do    []string `json:"do"`
	Avoid []string `json:"avoid"`
}

// TimeDirection lists favorable and unfavorable hours and favorable directions.
type TimeDirection struct {
	BestTimes  []string `json:"best_times"`
	AvoidTimes []string `json:"avoid_times"`
	Directions []string `json:"directions"`
}

// StateTrigger is a short embodiment cue.
type StateTrigger struct {
	Posture string `json:"posture" yaml:"posture"`
	Breath  string `json:"breath" yaml:"breath"`
	Phrase  string `json:"phrase" yaml:"phrase"`
}

// Content is an assembled document. Scores are carried so that consumers can
// re-derive the buckets the document was assembled from.
type Content struct {
	Scale  rhythm.Scale  `json:"scale"`
	Period string        `json:"period"`
	Theme  string        `json:"theme"`
	Scores rhythm.Scores `json:"scores"`

	Summary       string        `json:"summary"`
	Keywords      []string      `json:"keywords"`
	Description   string        `json:"description"`
	Focus         FocusBlock    `json:"focus"`
	Actions       ActionBlock   `json:"actions"`
	TimeDirection TimeDirection `json:"time_direction"`
	StateTrigger  StateTrigger  `json:"state_trigger"`
	MeaningShift  string        `json:"meaning_shift"`
	Question      string        `json:"question"`
}

// TextField is a named free-text value.
type TextField struct {
	Key   string
	Value string
}

// ListField is a named list value.
type ListField struct {
	Key   string
	Items []string
}

// TextFields returns every free-text field in document order.
func (c Content) TextFields() []TextField {
	return []TextField{
		{FieldSummary, c.Summary},
		{FieldDescription, c.Description},
		{FieldPosture, c.StateTrigger.Posture},
		{FieldBreath, c.StateTrigger.Breath},
		{FieldPhrase, c.StateTrigger.Phrase},
		{FieldMeaningShift, c.MeaningShift},
		{FieldQuestion, c.Question},
	}
}

// ListFields returns every list field in document order.
func (c Content) ListFields() []ListField {
	return []ListField{
		{FieldKeywords, c.Keywords},
		{FieldFocus, c.Focus.Focus},
		{FieldCaution, c.Focus.Caution},
		{FieldDo, c.Actions.Do},
		{FieldAvoid, c.Actions.Avoid},
		{FieldBestTimes, c.TimeDirection.BestTimes},
		{FieldAvoidTimes, c.TimeDirection.AvoidTimes},
		{FieldDirections, c.TimeDirection.Directions},
	}
}

// Clone returns a deep copy, so translations never alias the original's slices.
func (c Content) Clone() Content {
	out := c
	out.Keywords = cloneStrings(c.Keywords)
	out.Focus = FocusBlock{Focus: cloneStrings(c.Focus.Focus), Caution: cloneStrings(c.Focus.Caution)}
	out.Actions = ActionBlock{Do: cloneStrings(c.Actions.Do), Avoid: cloneStrings(c.Actions.Avoid)}
	out.TimeDirection = TimeDirection{
		BestTimes:  cloneStrings(c.TimeDirection.BestTimes),
		AvoidTimes: cloneStrings(c.TimeDirection.AvoidTimes),
		Directions: cloneStrings(c.TimeDirection.Directions),
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append(make([]string, 0, len(in)), in...)
}
