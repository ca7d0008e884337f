package rhythm

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhythm-hub/rhythm-core/internal/domain/birth"
	"github.com/rhythm-hub/rhythm-core/internal/domain/chart"
	"github.com/rhythm-hub/rhythm-core/internal/domain/shared"
	"github.com/rhythm-hub/rhythm-core/pkg/timeutil"
)

func seoulFixture(t *testing.T) (birth.Info, chart.Chart) {
	t.Helper()
	info, err := birth.NewInfo(birth.NewInfoParams{
		Name:      "Kim",
		BirthDate: "1990-01-15",
		BirthTime: "14:30",
		Gender:    "male",
		PlaceName: "Seoul",
	})
	require.NoError(t, err)

	c, err := chart.NewCalculator().ComputeChart(info, timeutil.Date(2026, time.January, 21))
	require.NoError(t, err)
	return info, c
}

// unknownChart is a metal day master on 庚辰 with no strength classification.
func unknownChart() chart.Chart {
	return chart.Chart{
		Pillars:          chart.Pillars{Day: chart.PillarAt(16)},
		DayMaster:        chart.Stem(6),
		DayMasterElement: chart.Metal,
		Favorable:        []chart.Element{},
		Unfavorable:      []chart.Element{},
	}
}

func windowStrings(ws []chart.TimeWindow) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.String())
	}
	return out
}

func TestAnalyzeDay_Reference(t *testing.T) {
	info, c := seoulFixture(t)

	sig, err := NewAnalyzer().AnalyzeDay(info, timeutil.Date(2026, time.January, 21), c)
	require.NoError(t, err)

	assert.Equal(t, ScaleDay, sig.Scale)
	assert.Equal(t, "2026-01-21", sig.Period())
	assert.Equal(t, "乙未", sig.Pillar.String())
	assert.Equal(t, chart.RelationWealth, sig.Relation)
	assert.Equal(t, Scores{Energy: 4, Focus: 3, Social: 3, Decision: 5}, sig.Scores)
	assert.Equal(t, "Harvest", sig.Theme)
	assert.Equal(t, []string{"05:00-07:00", "09:00-11:00", "11:00-13:00"}, windowStrings(sig.FavorableTimes))
	assert.Equal(t, []string{"01:00-03:00", "07:00-09:00", "13:00-15:00"}, windowStrings(sig.UnfavorableTimes))
	assert.Equal(t, []Direction{DirectionEast, DirectionSouth, DirectionNorth}, sig.FavorableDirections)
	assert.Len(t, sig.Opportunities, KeywordCount)
	assert.Len(t, sig.Challenges, KeywordCount)
}

func TestAnalyzeDay_Deterministic(t *testing.T) {
	info, c := seoulFixture(t)
	a := NewAnalyzer()
	date := timeutil.Date(2026, time.March, 3)

	first, err := a.AnalyzeDay(info, date, c)
	require.NoError(t, err)
	second, err := a.AnalyzeDay(info, date, c)
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("signal changed between runs (-first +second):\n%s", diff)
	}
}

func TestAnalyzeDay_BranchInterplay(t *testing.T) {
	info, c := seoulFixture(t)
	a := NewAnalyzer()

	// 戌 clashes the natal 辰 day branch.
	clash, err := a.AnalyzeDay(info, timeutil.Date(2026, time.January, 24), c)
	require.NoError(t, err)
	assert.Equal(t, "戊戌", clash.Pillar.String())
	assert.Equal(t, Scores{Energy: 2, Focus: 3, Social: 1, Decision: 2}, clash.Scores)
	assert.Equal(t, ClashKeyword, clash.Challenges[0])
	assert.Len(t, clash.Challenges, KeywordCount)
	assert.Equal(t, "07:00-09:00", clash.UnfavorableTimes[0].String())

	// 酉 harmonizes with 辰.
	harmony, err := a.AnalyzeDay(info, timeutil.Date(2026, time.January, 23), c)
	require.NoError(t, err)
	assert.Equal(t, "丁酉", harmony.Pillar.String())
	assert.Equal(t, Scores{Energy: 3, Focus: 3, Social: 3, Decision: 5}, harmony.Scores)
	assert.Equal(t, HarmonyKeyword, harmony.Opportunities[0])
	assert.Len(t, harmony.Opportunities, KeywordCount)
}

func TestAnalyzeDay_UnknownStrengthIsNeutral(t *testing.T) {
	c := unknownChart()

	// 庚子 is a companion day; 子 neither harmonizes with nor clashes 辰.
	sig, err := NewAnalyzer().AnalyzeDay(birth.Info{}, timeutil.Date(2026, time.January, 26), c)
	require.NoError(t, err)
	assert.Equal(t, "庚子", sig.Pillar.String())
	assert.Equal(t, Scores{Energy: 4, Focus: 3, Social: 4, Decision: 3}, sig.Scores)

	// The fallback windows drop 午 because it clashes the target 子.
	assert.Equal(t, []string{"09:00-11:00"}, windowStrings(sig.FavorableTimes))
	assert.Equal(t, []string{"11:00-13:00"}, windowStrings(sig.UnfavorableTimes))
	assert.Equal(t, []Direction{DirectionCenter}, sig.FavorableDirections)
}

func TestAnalyzeDay_ScoresAlwaysInRange(t *testing.T) {
	info, c := seoulFixture(t)
	a := NewAnalyzer()
	for d := timeutil.Date(2026, time.January, 1); d.Year() == 2026; d = d.AddDate(0, 0, 1) {
		sig, err := a.AnalyzeDay(info, d, c)
		require.NoError(t, err)
		require.NoError(t, sig.Scores.Validate(), timeutil.FormatDate(d))
		assert.NotEmpty(t, sig.FavorableTimes)
		assert.LessOrEqual(t, len(sig.FavorableTimes), MaxWindows)
		assert.LessOrEqual(t, len(sig.UnfavorableTimes), MaxWindows)
		for _, w := range sig.FavorableTimes {
			assert.NotContains(t, sig.UnfavorableTimes, w)
		}
	}
}

func TestAnalyzeDay_OutOfRange(t *testing.T) {
	info, c := seoulFixture(t)
	_, err := NewAnalyzer().AnalyzeDay(info, timeutil.Date(2101, time.January, 1), c)
	assert.True(t, shared.IsValidation(err))
}

func TestAnalyzeMonth_DayMapLength(t *testing.T) {
	info, c := seoulFixture(t)
	a := NewAnalyzer()

	tests := []struct {
		year, month, days int
	}{
		{2024, 2, 29},
		{2023, 2, 28},
		{2026, 1, 31},
		{2026, 4, 30},
	}
	for _, tt := range tests {
		sig, err := a.AnalyzeMonth(info, tt.year, tt.month, c)
		require.NoError(t, err)
		assert.Len(t, sig.DayEnergy, tt.days)
		for i, d := range sig.DayEnergy {
			assert.Equal(t, i+1, d.Day)
			assert.True(t, d.Energy.IsValid())
		}
	}
}

func TestAnalyzeMonth_Reference(t *testing.T) {
	info, c := seoulFixture(t)

	sig, err := NewAnalyzer().AnalyzeMonth(info, 2026, 1, c)
	require.NoError(t, err)
	assert.Equal(t, ScaleMonth, sig.Scale)
	assert.Equal(t, "2026-01", sig.Period())
	assert.Equal(t, "己丑", sig.Pillar.String())
	assert.Equal(t, chart.RelationResource, sig.Relation)

	energy, ok := sig.EnergyOn(21)
	assert.True(t, ok)
	assert.Equal(t, Score(4), energy)
	energy, ok = sig.EnergyOn(24)
	assert.True(t, ok)
	assert.Equal(t, Score(2), energy)
	_, ok = sig.EnergyOn(32)
	assert.False(t, ok)
}

func TestAnalyzeMonth_InvalidMonth(t *testing.T) {
	info, c := seoulFixture(t)
	a := NewAnalyzer()

	for _, m := range []int{0, 13} {
		_, err := a.AnalyzeMonth(info, 2026, m, c)
		assert.True(t, shared.IsValidation(err), "month %d", m)
	}
	_, err := a.AnalyzeMonth(info, 1899, 5, c)
	assert.True(t, shared.IsValidation(err))
}

func TestAnalyzeYear_Reference(t *testing.T) {
	info, c := seoulFixture(t)

	sig, err := NewAnalyzer().AnalyzeYear(info, 2026, c)
	require.NoError(t, err)
	assert.Equal(t, ScaleYear, sig.Scale)
	assert.Equal(t, "2026", sig.Period())
	assert.Equal(t, "丙午", sig.Pillar.String())
	assert.Equal(t, chart.RelationOfficer, sig.Relation)
	assert.Equal(t, Scores{Energy: 3, Focus: 5, Social: 2, Decision: 5}, sig.Scores)

	require.Len(t, sig.Months, 12)
	for i, m := range sig.Months {
		assert.Equal(t, i+1, m.Month)
		assert.NoError(t, m.Scores.Validate())
	}
	assert.Equal(t, "己丑", sig.Months[0].Pillar.String())
	assert.Equal(t, "庚寅", sig.Months[1].Pillar.String())

	require.NotNil(t, sig.ActiveDecade)
	assert.Equal(t, "癸酉", sig.ActiveDecade.Pillar.String())
	assert.True(t, sig.ActiveDecade.Contains(36))
}

func TestAnalyzeYear_DecadeAgeUsesSolarYear(t *testing.T) {
	// 00:05 in Seoul is still Dec 31 1999 on solar time.
	info, err := birth.NewInfo(birth.NewInfoParams{
		Name:      "Park",
		BirthDate: "2000-01-01",
		BirthTime: "00:05",
		Gender:    "female",
		PlaceName: "Seoul",
	})
	require.NoError(t, err)
	c, err := chart.NewCalculator().ComputeChart(info, timeutil.Date(2026, time.January, 21))
	require.NoError(t, err)
	require.Equal(t, 1999, c.BirthYear())
	require.NotNil(t, c.Decades)

	a := NewAnalyzer()
	differs := false
	for year := 2001; year <= 2080; year++ {
		sig, err := a.AnalyzeYear(info, year, c)
		require.NoError(t, err)

		want, ok := c.Decades.ActiveAt(year - 1999)
		if !ok {
			assert.Nil(t, sig.ActiveDecade, "year %d", year)
		} else {
			require.NotNil(t, sig.ActiveDecade, "year %d", year)
			assert.Equal(t, want, *sig.ActiveDecade, "year %d", year)
		}
		if civil, _ := c.Decades.ActiveAt(year - 2000); civil != want {
			differs = true
		}
	}
	assert.True(t, differs)
}

func TestAnalyzeYear_WithoutDecades(t *testing.T) {
	info, c := seoulFixture(t)
	c.Decades = nil

	sig, err := NewAnalyzer().AnalyzeYear(info, 2026, c)
	require.NoError(t, err)
	assert.Nil(t, sig.ActiveDecade)
}

func TestAnalyzeYear_OutOfRange(t *testing.T) {
	info, c := seoulFixture(t)
	_, err := NewAnalyzer().AnalyzeYear(info, 2101, c)
	assert.True(t, shared.IsValidation(err))
}

func TestAnalyze_CorruptChartIsComputationError(t *testing.T) {
	c := unknownChart()
	c.DayMasterElement = chart.Element(9)

	_, err := NewAnalyzer().AnalyzeDay(birth.Info{}, timeutil.Date(2026, time.January, 26), c)
	assert.True(t, shared.IsComputation(err))
}
