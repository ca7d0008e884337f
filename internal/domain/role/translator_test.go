package role

import (
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhythm-hub/rhythm-core/internal/domain/birth"
	"github.com/rhythm-hub/rhythm-core/internal/domain/chart"
	"github.com/rhythm-hub/rhythm-core/internal/domain/content"
	"github.com/rhythm-hub/rhythm-core/internal/domain/rhythm"
	"github.com/rhythm-hub/rhythm-core/internal/domain/shared"
	"github.com/rhythm-hub/rhythm-core/pkg/timeutil"
)

func newTestTranslator(t *testing.T) *Translator {
	t.Helper()
	v, err := DefaultVocabulary()
	require.NoError(t, err)
	return NewTranslator(v)
}

func assembled(t *testing.T, s rhythm.Scores) content.Content {
	t.Helper()
	sig := rhythm.Signal{
		Scale:               rhythm.ScaleDay,
		Date:                timeutil.Date(2026, time.January, 21),
		Year:                2026,
		Month:               1,
		Pillar:              chart.PillarAt(31),
		Relation:            chart.RelationWealth,
		Scores:              s,
		FavorableTimes:      []chart.TimeWindow{chart.Branch(3).HourWindow()},
		UnfavorableTimes:    []chart.TimeWindow{chart.Branch(1).HourWindow()},
		FavorableDirections: []rhythm.Direction{rhythm.DirectionEast},
		Theme:               "Harvest",
		Opportunities:       []string{"practical results", "resource planning", "negotiation"},
		Challenges:          []string{"overwork", "rushing", "tunnel vision"},
	}
	c, err := content.NewAssembler(content.MustDefaultPools()).Assemble(sig)
	require.NoError(t, err)
	return c
}

func jsonKeys(t *testing.T, v any) []string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))

	var keys []string
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			keys = append(keys, prefix+k)
			if child, ok := v.(map[string]any); ok {
				walk(prefix+k+".", child)
			}
		}
	}
	walk("", m)
	sort.Strings(keys)
	return keys
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		token string
		want  Role
	}{
		{"", Neutral},
		{"neutral", Neutral},
		{"student", Student},
		{" Office-Worker ", OfficeWorker},
		{"office_worker", OfficeWorker},
		{"FREELANCER", Freelancer},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.token)
		require.NoError(t, err, tt.token)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseRole("pirate")
	assert.ErrorIs(t, err, shared.ErrUnsupportedRole)
	assert.True(t, shared.IsValidation(err))
}

func TestTranslate_NeutralIsIdentity(t *testing.T) {
	tr := newTestTranslator(t)
	c := assembled(t, rhythm.Scores{Energy: 2, Focus: 4, Social: 3, Decision: 5})

	out, err := tr.Translate(c, Neutral)
	require.NoError(t, err)
	assert.Equal(t, Neutral, out.Role)
	assert.Empty(t, out.Substitutions)
	if diff := cmp.Diff(c, out.Content); diff != "" {
		t.Fatalf("neutral translation changed content (-want +got):\n%s", diff)
	}
	assert.True(t, tr.ValidateSemanticPreservation(c, out).Strict())
}

func TestTranslate_UnsupportedRole(t *testing.T) {
	tr := newTestTranslator(t)
	_, err := tr.Translate(assembled(t, rhythm.NeutralScores()), Role("pirate"))
	assert.ErrorIs(t, err, shared.ErrUnsupportedRole)
}

func TestTranslate_RejectsMalformedContent(t *testing.T) {
	tr := newTestTranslator(t)
	c := assembled(t, rhythm.NeutralScores())
	c.Keywords = nil

	_, err := tr.Translate(c, Student)
	assert.True(t, shared.IsValidation(err))
}

func TestTranslate_StructuralPreservation(t *testing.T) {
	tr := newTestTranslator(t)
	substitutions := 0

	for e := rhythm.MinScore; e <= rhythm.MaxScore; e++ {
		for f := rhythm.MinScore; f <= rhythm.MaxScore; f++ {
			for s := rhythm.MinScore; s <= rhythm.MaxScore; s++ {
				for d := rhythm.MinScore; d <= rhythm.MaxScore; d++ {
					c := assembled(t, rhythm.Scores{Energy: e, Focus: f, Social: s, Decision: d})
					for _, r := range All {
						out, err := tr.Translate(c, r)
						require.NoError(t, err)
						substitutions += len(out.Substitutions)

						for i, lf := range out.Content.ListFields() {
							require.Len(t, lf.Items, len(c.ListFields()[i].Items), lf.Key)
						}
						report := tr.ValidateSemanticPreservation(c, out)
						require.True(t, report.OK(), "%s %+v: %v", r, c.Scores, report.Messages())
						require.True(t, content.Validate(out.Content).OK(), "%s %+v", r, c.Scores)
					}
				}
			}
		}
	}
	assert.Positive(t, substitutions)
}

func TestTranslate_StudentReference(t *testing.T) {
	info, err := birth.NewInfo(birth.NewInfoParams{
		Name:      "Kim",
		BirthDate: "1990-01-15",
		BirthTime: "14:30",
		Gender:    "male",
		PlaceName: "Seoul",
	})
	require.NoError(t, err)
	date := timeutil.Date(2026, time.January, 21)

	ch, err := chart.NewCalculator().ComputeChart(info, date)
	require.NoError(t, err)
	sig, err := rhythm.NewAnalyzer().AnalyzeDay(info, date, ch)
	require.NoError(t, err)
	c, err := content.NewAssembler(content.MustDefaultPools()).Assemble(sig)
	require.NoError(t, err)

	tr := newTestTranslator(t)
	out, err := tr.Translate(c, Student)
	require.NoError(t, err)

	assert.Equal(t, jsonKeys(t, c), jsonKeys(t, out.Content))
	assert.Equal(t, c.Scores, out.Content.Scores)
	assert.Equal(t, c.TimeDirection, out.Content.TimeDirection)
	assert.Equal(t, c.StateTrigger, out.Content.StateTrigger)
	assert.Contains(t, tr.vocab.Pools[Student].Question[c.Scores.Focus.Int()], out.Content.Question)

	again, err := tr.Translate(c, Student)
	require.NoError(t, err)
	if diff := cmp.Diff(out, again); diff != "" {
		t.Fatalf("translation changed between runs:\n%s", diff)
	}
}

func TestSubstitute_WholeWordAndCase(t *testing.T) {
	tr := newTestTranslator(t)

	got, subs := tr.substitute(content.FieldSummary, "Task first, then multitask; the TASK and one Meeting.", Student)
	assert.Equal(t, "Assignment first, then multitask; the ASSIGNMENT and one Study group.", got)
	require.Len(t, subs, 3)
	assert.Equal(t, Substitution{Field: content.FieldSummary, Concept: "task", Phrase: "assignment"}, subs[0])
	assert.Equal(t, "meeting", subs[2].Concept)

	// Identity phrases are not recorded.
	got, subs = tr.substitute(content.FieldSummary, "Confirm the deadline.", OfficeWorker)
	assert.Equal(t, "Confirm the deadline.", got)
	assert.Empty(t, subs)

	// Unknown words stay put.
	got, _ = tr.substitute(content.FieldSummary, "Restful tasks and resting.", Freelancer)
	assert.Equal(t, "Restful tasks and resting.", got)
}

func TestValidateSemanticPreservation_Violations(t *testing.T) {
	tr := newTestTranslator(t)
	c := assembled(t, rhythm.Scores{Energy: 3, Focus: 3, Social: 4, Decision: 2})
	good, err := tr.Translate(c, Freelancer)
	require.NoError(t, err)

	t.Run("score changed", func(t *testing.T) {
		bad := good
		bad.Content = good.Content.Clone()
		bad.Content.Scores.Energy = 5
		r := tr.ValidateSemanticPreservation(c, bad)
		assert.False(t, r.OK())
		assert.Equal(t, content.FieldScores, r.Violations[0].Field)
	})

	t.Run("list shortened", func(t *testing.T) {
		bad := good
		bad.Content = good.Content.Clone()
		bad.Content.Actions.Avoid = bad.Content.Actions.Avoid[:1]
		assert.False(t, tr.ValidateSemanticPreservation(c, bad).OK())
	})

	t.Run("field dropped", func(t *testing.T) {
		bad := good
		bad.Content = good.Content.Clone()
		bad.Content.MeaningShift = ""
		r := tr.ValidateSemanticPreservation(c, bad)
		require.False(t, r.OK())
		assert.Contains(t, r.Messages()[0], "field dropped")
	})

	t.Run("unrecognized rewrite", func(t *testing.T) {
		bad := good
		bad.Content = good.Content.Clone()
		bad.Content.Summary = good.Content.Summary + " Trust the vibes."
		assert.False(t, tr.ValidateSemanticPreservation(c, bad).OK())
	})

	t.Run("substitution outside lexicon", func(t *testing.T) {
		bad := good
		bad.Substitutions = append([]Substitution{}, good.Substitutions...)
		bad.Substitutions = append(bad.Substitutions, Substitution{Field: content.FieldSummary, Concept: "homework", Phrase: "gig"})
		assert.False(t, tr.ValidateSemanticPreservation(c, bad).OK())
	})

	t.Run("length drift warns", func(t *testing.T) {
		bad := good
		bad.Content = good.Content.Clone()
		bad.Content.Summary = c.Summary + " " + c.Summary
		r := tr.ValidateSemanticPreservation(c, bad)
		require.NotEmpty(t, r.Warnings)
		assert.Equal(t, content.FieldSummary, r.Warnings[0].Field)
		assert.False(t, r.Strict())
	})
}

func TestLoadVocabulary_Rejects(t *testing.T) {
	_, err := LoadVocabulary([]byte("lexicon:\n  task:\n    student: \"assignment\"\n"))
	assert.ErrorIs(t, err, shared.ErrMissingTable)
}
