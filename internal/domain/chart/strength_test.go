package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStrength(t *testing.T) {
	tests := []struct {
		name    string
		balance Balance
		dm      Element
		want    Strength
	}{
		{"strong at 60%", Balance{0, 5, 9, 3, 3}, Metal, StrengthStrong},
		{"strong through resource", Balance{8, 4, 4, 2, 2}, Fire, StrengthStrong},
		{"weak at 40%", Balance{4, 4, 6, 3, 3}, Fire, StrengthWeak},
		{"weak at 25%", Balance{3, 2, 10, 3, 2}, Water, StrengthWeak},
		{"balanced at 50%", Balance{5, 5, 4, 3, 3}, Fire, StrengthBalanced},
		{"unknown on empty", Balance{}, Wood, StrengthUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStrength(tt.balance, tt.dm))
		})
	}
}

func TestElementPreference(t *testing.T) {
	fav, unfav := ElementPreference(Metal, StrengthStrong)
	assert.Equal(t, []Element{Wood, Fire, Water}, fav)
	assert.Equal(t, []Element{Earth, Metal}, unfav)

	fav, unfav = ElementPreference(Wood, StrengthWeak)
	assert.Equal(t, []Element{Wood, Water}, fav)
	assert.Equal(t, []Element{Fire, Earth, Metal}, unfav)

	fav, unfav = ElementPreference(Wood, StrengthBalanced)
	assert.Equal(t, []Element{Fire, Earth}, fav)
	assert.Equal(t, []Element{Metal}, unfav)

	fav, unfav = ElementPreference(Wood, StrengthUnknown)
	assert.NotNil(t, fav)
	assert.Empty(t, fav)
	assert.Empty(t, unfav)
}

func TestPreferenceSetsDisjoint(t *testing.T) {
	for _, dm := range AllElements {
		for _, s := range []Strength{StrengthWeak, StrengthBalanced, StrengthStrong} {
			fav, unfav := ElementPreference(dm, s)
			for _, e := range fav {
				assert.False(t, ContainsElement(unfav, e), "%s/%s: %s in both sets", dm, s, e)
			}
		}
	}
}

func TestRelationOf(t *testing.T) {
	assert.Equal(t, RelationCompanion, RelationOf(Metal, Metal))
	assert.Equal(t, RelationResource, RelationOf(Metal, Earth))
	assert.Equal(t, RelationOutput, RelationOf(Metal, Water))
	assert.Equal(t, RelationWealth, RelationOf(Metal, Wood))
	assert.Equal(t, RelationOfficer, RelationOf(Metal, Fire))

	for _, dm := range AllElements {
		for _, r := range AllRelations {
			assert.Equal(t, r, RelationOf(dm, ElementFor(dm, r)))
		}
	}
}
