package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhythm-hub/rhythm-core/internal/domain/rhythm"
)

func validContent(t *testing.T) Content {
	t.Helper()
	c, err := newTestAssembler(t).Assemble(syntheticSignal(rhythm.ScaleDay, rhythm.NeutralScores()))
	require.NoError(t, err)
	require.True(t, Validate(c).OK())
	return c
}

func TestValidate_EmptyContentIsStructural(t *testing.T) {
	r := Validate(Content{})

	assert.False(t, r.OK())
	assert.Equal(t, 0, r.Count(ViolationBudget))
	// scale, period, theme, scores, 7 text fields, 8 list fields
	assert.Equal(t, 19, r.Count(ViolationStructural))
	assert.Contains(t, r.Messages(), "structural: summary: missing")
}

func TestValidate_BudgetOverruns(t *testing.T) {
	c := validContent(t)
	c.Summary = "Too short."
	c.Question = strings.Repeat("why ", 40)
	c.Actions.Do[1] = strings.Repeat("x", ListItemMax+1)

	r := Validate(c)
	assert.False(t, r.OK())
	assert.Equal(t, 0, r.Count(ViolationStructural))
	assert.Equal(t, 3, r.Count(ViolationBudget))
	assert.Equal(t, FieldSummary, r.Violations[0].Field)
}

func TestValidate_CardinalityIsStructural(t *testing.T) {
	c := validContent(t)
	c.Keywords = c.Keywords[:2]
	c.TimeDirection.BestTimes = append(c.TimeDirection.BestTimes, "13:00-15:00")
	c.Focus.Caution[0] = ""

	r := Validate(c)
	assert.Equal(t, 3, r.Count(ViolationStructural), r.Messages())
}

func TestValidate_PrimaryPageCeiling(t *testing.T) {
	c := validContent(t)
	c.Summary = strings.Repeat("s", SummaryBudget.Max)
	c.Description = strings.Repeat("d", DescriptionBudget.Max)
	c.MeaningShift = strings.Repeat("m", MeaningShiftBudget.Max)
	c.Question = strings.Repeat("q", QuestionBudget.Max)

	r := Validate(c)
	require.Len(t, r.Violations, 1)
	assert.Equal(t, "primary_page", r.Violations[0].Field)
	assert.Equal(t, ViolationBudget, r.Violations[0].Kind)
}

func TestValidate_CountsRunesNotBytes(t *testing.T) {
	c := validContent(t)
	c.Summary = strings.Repeat("가", SummaryBudget.Max)
	assert.True(t, Validate(c).OK())
}

func TestClone_DoesNotAlias(t *testing.T) {
	c := validContent(t)
	cp := c.Clone()
	cp.Keywords[0] = "changed"
	cp.Actions.Avoid[0] = "changed"
	assert.NotEqual(t, "changed", c.Keywords[0])
	assert.NotEqual(t, "changed", c.Actions.Avoid[0])
}
