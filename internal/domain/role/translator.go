package role

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rhythm-hub/rhythm-core/internal/domain/content"
	"github.com/rhythm-hub/rhythm-core/internal/domain/rhythm"
	"github.com/rhythm-hub/rhythm-core/internal/domain/shared"
)

// Substitution records one concept swapped for a role phrase.
type Substitution struct {
	Field   string `json:"field"`
	Concept string `json:"concept"`
	Phrase  string `json:"phrase"`
}

// Translated is a content document rewritten for a role.
type Translated struct {
	Role          Role            `json:"role"`
	Content       content.Content `json:"content"`
	Substitutions []Substitution  `json:"substitutions,omitempty"`
}

// Translator applies a vocabulary to content. It is safe for concurrent use.
type Translator struct {
	vocab   *Vocabulary
	concept *regexp.Regexp
}

// NewTranslator compiles the whole-word concept matcher for a vocabulary.
func NewTranslator(v *Vocabulary) *Translator {
	concepts := v.Concepts()
	quoted := make([]string, 0, len(concepts))
	for _, c := range concepts {
		quoted = append(quoted, regexp.QuoteMeta(c))
	}
	return &Translator{
		vocab:   v,
		concept: regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`),
	}
}

// Translate rewrites c for role r. The neutral role returns c unchanged.
// The field set and every list length are preserved.
func (t *Translator) Translate(c content.Content, r Role) (Translated, error) {
	const op = "Translate"

	if !r.IsValid() {
		return Translated{}, shared.Validationf("role", op, shared.ErrUnsupportedRole, "unsupported role %q", string(r))
	}
	if r.IsNeutral() {
		return Translated{Role: Neutral, Content: c}, nil
	}
	if report := content.Validate(c); report.Count(content.ViolationStructural) > 0 {
		return Translated{}, shared.Validationf("role", op, shared.ErrInvalidInput,
			"content is structurally invalid: %s", strings.Join(report.Messages(), "; "))
	}

	pools := t.vocab.Pools[r]
	out := c.Clone()
	var subs []Substitution

	rewrite := func(field, text string) string {
		s, found := t.substitute(field, text, r)
		subs = append(subs, found...)
		return s
	}

	out.Summary = rewrite(content.FieldSummary, c.Summary)
	out.Description = rewrite(content.FieldDescription, c.Description)
	out.MeaningShift = rewrite(content.FieldMeaningShift, c.MeaningShift)
	for i, item := range c.Focus.Focus {
		out.Focus.Focus[i] = rewrite(content.FieldFocus, item)
	}
	for i, item := range c.Focus.Caution {
		out.Focus.Caution[i] = rewrite(content.FieldCaution, item)
	}

	seed := c.Period + "|" + string(r) + "|"
	out.Keywords = pick(pools.Keywords, c.Scores.Energy, seed+content.FieldKeywords)
	out.Actions.Do = pick(pools.Do, c.Scores.Decision, seed+content.FieldDo)
	out.Actions.Avoid = pick(pools.Avoid, c.Scores.Decision, seed+content.FieldAvoid)
	questions := pools.Question[c.Scores.Focus.Int()]
	out.Question = questions[content.Choose(seed+content.FieldQuestion, len(questions))]

	return Translated{Role: r, Content: out, Substitutions: subs}, nil
}

func pick(pool content.ListPool, bucket rhythm.Score, key string) []string {
	candidates := pool[bucket.Int()]
	chosen := candidates[content.Choose(key, len(candidates))]
	return append(make([]string, 0, len(chosen)), chosen...)
}

// substitute swaps every known concept in text for its role phrase, keeping the
// matched word's capitalization.
func (t *Translator) substitute(field, text string, r Role) (string, []Substitution) {
	var subs []Substitution
	out := t.concept.ReplaceAllStringFunc(text, func(m string) string {
		concept := strings.ToLower(m)
		phrase, ok := t.vocab.Phrase(concept, r)
		if !ok || strings.EqualFold(phrase, m) {
			return m
		}
		subs = append(subs, Substitution{Field: field, Concept: concept, Phrase: phrase})
		return matchCase(m, phrase)
	})
	return out, subs
}

func matchCase(src, phrase string) string {
	if utf8.RuneCountInString(src) > 1 && strings.ToUpper(src) == src {
		return strings.ToUpper(phrase)
	}
	if r, _ := utf8.DecodeRuneInString(src); unicode.IsUpper(r) {
		p, size := utf8.DecodeRuneInString(phrase)
		return string(unicode.ToUpper(p)) + phrase[size:]
	}
	return phrase
}
