package role

import (
	"fmt"
	"math"
	"slices"
	"unicode/utf8"

	"github.com/rhythm-hub/rhythm-core/internal/domain/content"
)

// LengthTolerance is the relative free-text length change above which a
// translated field draws a warning.
const LengthTolerance = 0.40

// Severity grades a preservation finding.
type Severity string

const (
	SeverityViolation Severity = "violation"
	SeverityWarning   Severity = "warning"
)

// Finding is one preservation check result.
type Finding struct {
	Field    string   `json:"field"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s: %s", f.Severity, f.Field, f.Message)
}

// PreservationReport separates hard violations from length warnings.
type PreservationReport struct {
	Violations []Finding `json:"violations"`
	Warnings   []Finding `json:"warnings"`
}

// OK reports whether no hard violation was found. Warnings do not fail a report.
func (r PreservationReport) OK() bool { return len(r.Violations) == 0 }

// Strict reports whether the report has neither violations nor warnings.
func (r PreservationReport) Strict() bool { return r.OK() && len(r.Warnings) == 0 }

// Messages returns violations then warnings as strings.
func (r PreservationReport) Messages() []string {
	out := make([]string, 0, len(r.Violations)+len(r.Warnings))
	for _, f := range r.Violations {
		out = append(out, f.String())
	}
	for _, f := range r.Warnings {
		out = append(out, f.String())
	}
	return out
}

func (r *PreservationReport) violation(field, format string, args ...any) {
	r.Violations = append(r.Violations, Finding{Field: field, Severity: SeverityViolation, Message: fmt.Sprintf(format, args...)})
}

func (r *PreservationReport) warning(field, format string, args ...any) {
	r.Warnings = append(r.Warnings, Finding{Field: field, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)})
}

// how each field may legitimately change under translation
type fieldRule int

const (
	ruleUnchanged fieldRule = iota
	ruleSubstituted
	rulePooled
)

var fieldRules = map[string]fieldRule{
	content.FieldSummary:      ruleSubstituted,
	content.FieldDescription:  ruleSubstituted,
	content.FieldMeaningShift: ruleSubstituted,
	content.FieldFocus:        ruleSubstituted,
	content.FieldCaution:      ruleSubstituted,
	content.FieldKeywords:     rulePooled,
	content.FieldDo:           rulePooled,
	content.FieldAvoid:        rulePooled,
	content.FieldQuestion:     rulePooled,
}

// lengthChecked lists the prose fields whose length drift is reported.
var lengthChecked = []string{content.FieldSummary, content.FieldDescription, content.FieldMeaningShift, content.FieldQuestion}

// ValidateSemanticPreservation compares a translation against its original.
// Dropped, added or reshaped fields, changed scores and substitutions the
// vocabulary does not explain are violations. Free-text length drift beyond
// LengthTolerance is a warning.
func (t *Translator) ValidateSemanticPreservation(original content.Content, tr Translated) PreservationReport {
	var r PreservationReport
	got := tr.Content

	if got.Scores != original.Scores {
		r.violation(content.FieldScores, "scores changed from %+v to %+v", original.Scores, got.Scores)
	}
	for _, h := range []struct{ key, was, now string }{
		{content.FieldScale, string(original.Scale), string(got.Scale)},
		{content.FieldPeriod, original.Period, got.Period},
		{content.FieldTheme, original.Theme, got.Theme},
	} {
		if h.was != h.now {
			r.violation(h.key, "changed from %q to %q", h.was, h.now)
		}
	}

	if !tr.Role.IsValid() {
		r.violation("role", "unsupported role %q", string(tr.Role))
		return r
	}
	for _, s := range tr.Substitutions {
		if p, ok := t.vocab.Phrase(s.Concept, tr.Role); !ok || p != s.Phrase {
			r.violation(s.Field, "substitution %q -> %q is not in the %s lexicon", s.Concept, s.Phrase, tr.Role)
		}
	}

	wantTexts := original.TextFields()
	for i, f := range got.TextFields() {
		was := wantTexts[i].Value
		switch {
		case was != "" && f.Value == "":
			r.violation(f.Key, "field dropped")
			continue
		case was == "" && f.Value != "":
			r.violation(f.Key, "field added")
			continue
		}
		t.checkChange(&r, tr.Role, original, f.Key, []string{was}, []string{f.Value})
	}

	wantLists := original.ListFields()
	for i, f := range got.ListFields() {
		was := wantLists[i].Items
		switch {
		case len(was) > 0 && len(f.Items) == 0:
			r.violation(f.Key, "list dropped")
			continue
		case len(was) == 0 && len(f.Items) > 0:
			r.violation(f.Key, "list added")
			continue
		case len(was) != len(f.Items):
			r.violation(f.Key, "list length changed from %d to %d", len(was), len(f.Items))
			continue
		}
		t.checkChange(&r, tr.Role, original, f.Key, was, f.Items)
	}

	for _, key := range lengthChecked {
		was, now := textByKey(original, key), textByKey(got, key)
		if was == "" {
			continue
		}
		a, b := utf8.RuneCountInString(was), utf8.RuneCountInString(now)
		if delta := math.Abs(float64(b-a)) / float64(a); delta > LengthTolerance {
			r.warning(key, "length changed by %.0f%% (%d -> %d)", delta*100, a, b)
		}
	}
	return r
}

func (t *Translator) checkChange(r *PreservationReport, role Role, original content.Content, key string, was, now []string) {
	rule := fieldRules[key]
	if role.IsNeutral() {
		rule = ruleUnchanged
	}

	switch rule {
	case ruleSubstituted:
		for i := range was {
			if want, _ := t.substitute(key, was[i], role); want != now[i] {
				r.violation(key, "unrecognized substitution in %q", now[i])
			}
		}
	case rulePooled:
		if !t.inPool(role, original, key, now) {
			r.violation(key, "replacement is not from the %s pool for this bucket", role)
		}
	default:
		for i := range was {
			if was[i] != now[i] {
				r.violation(key, "changed from %q to %q", was[i], now[i])
			}
		}
	}
}

func (t *Translator) inPool(role Role, original content.Content, key string, items []string) bool {
	pools := t.vocab.Pools[role]
	s := original.Scores

	var candidates [][]string
	switch key {
	case content.FieldKeywords:
		candidates = pools.Keywords[s.Energy.Int()]
	case content.FieldDo:
		candidates = pools.Do[s.Decision.Int()]
	case content.FieldAvoid:
		candidates = pools.Avoid[s.Decision.Int()]
	case content.FieldQuestion:
		for _, q := range pools.Question[s.Focus.Int()] {
			candidates = append(candidates, []string{q})
		}
	}
	for _, c := range candidates {
		if slices.Equal(c, items) {
			return true
		}
	}
	return false
}

func textByKey(c content.Content, key string) string {
	for _, f := range c.TextFields() {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}
