package content

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhythm-hub/rhythm-core/internal/domain/birth"
	"github.com/rhythm-hub/rhythm-core/internal/domain/chart"
	"github.com/rhythm-hub/rhythm-core/internal/domain/rhythm"
	"github.com/rhythm-hub/rhythm-core/internal/domain/shared"
	"github.com/rhythm-hub/rhythm-core/pkg/timeutil"
)

// syntheticSignal uses the longest theme and keyword values the rubric can produce.
func syntheticSignal(scale rhythm.Scale, s rhythm.Scores) rhythm.Signal {
	return rhythm.Signal{
		Scale:    scale,
		Date:     timeutil.Date(2026, time.January, 21),
		Year:     2026,
		Month:    1,
		Pillar:   chart.PillarAt(31),
		Relation: chart.RelationOutput,
		Scores:   s,
		FavorableTimes: []chart.TimeWindow{
			chart.Branch(3).HourWindow(), chart.Branch(5).HourWindow(), chart.Branch(6).HourWindow(),
		},
		UnfavorableTimes:    []chart.TimeWindow{chart.Branch(1).HourWindow()},
		FavorableDirections: []rhythm.Direction{rhythm.DirectionCenter, rhythm.DirectionNorth},
		Theme:               "Expression",
		Opportunities:       []string{"practical results", "resource planning", "negotiation"},
		Challenges:          []string{"scattered energy", "overpromising", "impatience"},
	}
}

func allScores() []rhythm.Scores {
	out := make([]rhythm.Scores, 0, 625)
	for e := rhythm.MinScore; e <= rhythm.MaxScore; e++ {
		for f := rhythm.MinScore; f <= rhythm.MaxScore; f++ {
			for s := rhythm.MinScore; s <= rhythm.MaxScore; s++ {
				for d := rhythm.MinScore; d <= rhythm.MaxScore; d++ {
					out = append(out, rhythm.Scores{Energy: e, Focus: f, Social: s, Decision: d})
				}
			}
		}
	}
	return out
}

func newTestAssembler(t *testing.T) *Assembler {
	t.Helper()
	pools, err := DefaultPools()
	require.NoError(t, err)
	return NewAssembler(pools)
}

func TestDefaultPools_Load(t *testing.T) {
	pools, err := DefaultPools()
	require.NoError(t, err)
	for b := 1; b <= 5; b++ {
		assert.NotEmpty(t, pools.Summary[b])
		assert.NotEmpty(t, pools.StateTrigger[b])
	}
	assert.Same(t, pools, MustDefaultPools())
}

func TestLoadPools_Rejects(t *testing.T) {
	_, err := LoadPools([]byte("summary: [unterminated"))
	assert.ErrorIs(t, err, shared.ErrMissingTable)

	_, err = LoadPools([]byte("summary:\n  1: [\"only one bucket\"]\n"))
	assert.ErrorIs(t, err, shared.ErrMissingTable)
	assert.True(t, shared.IsComputation(err))
}

func TestAssemble_AllScoreCombinationsPassValidation(t *testing.T) {
	a := newTestAssembler(t)

	for _, scale := range []rhythm.Scale{rhythm.ScaleDay, rhythm.ScaleMonth, rhythm.ScaleYear} {
		for _, s := range allScores() {
			c, err := a.Assemble(syntheticSignal(scale, s))
			require.NoError(t, err, "%s %+v", scale, s)

			report := Validate(c)
			if !assert.True(t, report.OK(), "%s %+v: %v", scale, s, report.Messages()) {
				return
			}
			assert.NotContains(t, c.Summary, "{")
			assert.NotContains(t, c.Description, "{")
		}
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	a := newTestAssembler(t)
	sig := syntheticSignal(rhythm.ScaleDay, rhythm.Scores{Energy: 4, Focus: 2, Social: 5, Decision: 1})

	first, err := a.Assemble(sig)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := a.Assemble(sig)
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("content changed between runs (-first +again):\n%s", diff)
		}
	}
}

func TestAssemble_CarriesSignalFields(t *testing.T) {
	a := newTestAssembler(t)
	sig := syntheticSignal(rhythm.ScaleMonth, rhythm.NeutralScores())

	c, err := a.Assemble(sig)
	require.NoError(t, err)
	assert.Equal(t, rhythm.ScaleMonth, c.Scale)
	assert.Equal(t, "2026-01", c.Period)
	assert.Equal(t, "Expression", c.Theme)
	assert.Equal(t, rhythm.NeutralScores(), c.Scores)
	assert.Equal(t, []string{"05:00-07:00", "09:00-11:00", "11:00-13:00"}, c.TimeDirection.BestTimes)
	assert.Equal(t, []string{"01:00-03:00"}, c.TimeDirection.AvoidTimes)
	assert.Equal(t, []string{"center", "north"}, c.TimeDirection.Directions)
	assert.Len(t, c.Keywords, ListSize)
}

func TestAssemble_SeoulReference(t *testing.T) {
	info, err := birth.NewInfo(birth.NewInfoParams{
		Name:      "Kim",
		BirthDate: "1990-01-15",
		BirthTime: "14:30",
		Gender:    "male",
		PlaceName: "Seoul",
	})
	require.NoError(t, err)
	date := timeutil.Date(2026, time.January, 21)

	c, err := chart.NewCalculator().ComputeChart(info, date)
	require.NoError(t, err)
	sig, err := rhythm.NewAnalyzer().AnalyzeDay(info, date, c)
	require.NoError(t, err)

	doc, err := newTestAssembler(t).Assemble(sig)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Summary)
	assert.LessOrEqual(t, utf8.RuneCountInString(doc.Summary), SummaryBudget.Max)
	assert.True(t, Validate(doc).OK(), Validate(doc).Messages())
}

func TestAssemble_Errors(t *testing.T) {
	a := newTestAssembler(t)

	t.Run("score out of range", func(t *testing.T) {
		sig := syntheticSignal(rhythm.ScaleDay, rhythm.Scores{Energy: 6, Focus: 3, Social: 3, Decision: 3})
		_, err := a.Assemble(sig)
		assert.True(t, shared.IsAssembly(err))
	})

	t.Run("unknown scale", func(t *testing.T) {
		sig := syntheticSignal("week", rhythm.NeutralScores())
		_, err := a.Assemble(sig)
		assert.True(t, shared.IsAssembly(err))
	})

	t.Run("no directions", func(t *testing.T) {
		sig := syntheticSignal(rhythm.ScaleDay, rhythm.NeutralScores())
		sig.FavorableDirections = nil
		_, err := a.Assemble(sig)
		assert.True(t, shared.IsAssembly(err))
	})

	t.Run("missing substitution value", func(t *testing.T) {
		strict := NewAssembler(uniformPools("Lean on {opportunity} {span}, whatever comes."))
		sig := syntheticSignal(rhythm.ScaleDay, rhythm.NeutralScores())
		sig.Opportunities = nil
		_, err := strict.Assemble(sig)
		assert.True(t, shared.IsAssembly(err))
		assert.Contains(t, err.Error(), "{opportunity}")
	})

	t.Run("unknown placeholder", func(t *testing.T) {
		strict := NewAssembler(uniformPools("Hello {mood} friend, welcome back."))
		_, err := strict.Assemble(syntheticSignal(rhythm.ScaleDay, rhythm.NeutralScores()))
		assert.True(t, shared.IsAssembly(err))
	})
}

func TestChoose(t *testing.T) {
	assert.Equal(t, 0, Choose("anything", 1))
	assert.Equal(t, 0, Choose("anything", 0))
	for _, key := range []string{"2026-01-21|乙未|summary", "2026|丙午|question"} {
		i := Choose(key, 7)
		assert.GreaterOrEqual(t, i, 0)
		assert.Less(t, i, 7)
		assert.Equal(t, i, Choose(key, 7))
	}
}

// uniformPools builds pools where every text candidate is tpl.
func uniformPools(tpl string) *Pools {
	text := TextPool{}
	list := ListPool{}
	trig := TriggerPool{}
	for b := 1; b <= 5; b++ {
		text[b] = []string{tpl}
		list[b] = [][]string{{"one", "two", "three"}}
		trig[b] = []StateTrigger{{Posture: strings.Repeat("p", 12), Breath: strings.Repeat("b", 12), Phrase: strings.Repeat("f", 12)}}
	}
	return &Pools{
		Summary: text, Keywords: list, DescriptionEnergy: text, DescriptionSocial: text,
		Focus: list, Caution: list, Do: list, Avoid: list, StateTrigger: trig,
		MeaningShift: text, Question: text,
	}
}
