package rhythm

import (
	"sort"

	"github.com/rhythm-hub/rhythm-core/internal/domain/chart"
)

// MaxWindows bounds the favorable and unfavorable time-window sets.
const MaxWindows = 3

// MaxDirections bounds the favorable direction set.
const MaxDirections = 3

// KeywordCount is the size of the opportunity and challenge sets.
const KeywordCount = 3

// Keywords added by branch interplay with the natal day branch.
const (
	HarmonyKeyword = "connection"
	ClashKeyword   = "friction"
)

// delta is a per-axis score adjustment.
type delta struct {
	energy, focus, social, decision int
}

func (d delta) add(o delta) delta {
	return delta{d.energy + o.energy, d.focus + o.focus, d.social + o.social, d.decision + o.decision}
}

// relationProfile is the fixed rubric entry for one relation of the target stem
// to the day master.
type relationProfile struct {
	delta         delta
	theme         string
	opportunities []string
	challenges    []string
}

var relationRubric = map[chart.Relation]relationProfile{
	chart.RelationCompanion: {
		delta:         delta{energy: 1, social: 1},
		theme:         "Alliance",
		opportunities: []string{"collaboration", "peer support", "shared momentum"},
		challenges:    []string{"comparison", "stubbornness", "overcommitment"},
	},
	chart.RelationResource: {
		delta:         delta{energy: 1, focus: 1, social: -1},
		theme:         "Learning",
		opportunities: []string{"study", "mentorship", "recovery"},
		challenges:    []string{"hesitation", "passivity", "overthinking"},
	},
	chart.RelationOutput: {
		delta:         delta{energy: 1, focus: -1, social: 1},
		theme:         "Expression",
		opportunities: []string{"creativity", "presentation", "new ideas"},
		challenges:    []string{"scattered energy", "overpromising", "impatience"},
	},
	chart.RelationWealth: {
		delta:         delta{focus: 1, decision: 1},
		theme:         "Harvest",
		opportunities: []string{"practical results", "resource planning", "negotiation"},
		challenges:    []string{"overwork", "rushing", "tunnel vision"},
	},
	chart.RelationOfficer: {
		delta:         delta{energy: -1, focus: 1, social: -1, decision: 1},
		theme:         "Discipline",
		opportunities: []string{"structure", "responsibility", "recognition"},
		challenges:    []string{"pressure", "rigidity", "self-criticism"},
	},
}

var (
	stemFavorableDelta   = delta{energy: 1, decision: 1}
	stemUnfavorableDelta = delta{energy: -1}
	branchFavorableDelta = delta{focus: 1}
	branchUnfavorDelta   = delta{focus: -1}
	harmonyDelta         = delta{social: 1}
	clashDelta           = delta{energy: -1, social: -1, decision: -1}
)

// fallbackWindows are used when the chart names no favorable element whose hours
// remain. The clash window is still dropped from them.
var fallbackWindows = []chart.TimeWindow{
	chart.Branch(5).HourWindow(), // 巳 09:00-11:00
	chart.Branch(6).HourWindow(), // 午 11:00-13:00
}

// evaluation is the rubric's verdict on one target pillar.
type evaluation struct {
	relation      chart.Relation
	scores        Scores
	theme         string
	opportunities []string
	challenges    []string
}

// evaluate scores a target pillar against a chart. Preference deltas only apply
// when the chart's strength is known; otherwise every axis keeps NeutralScore
// plus the relation and branch-interplay deltas.
func evaluate(c chart.Chart, target chart.Pillar) (evaluation, bool) {
	relation := chart.RelationOf(c.DayMasterElement, target.Stem.Element())
	profile, ok := relationRubric[relation]
	if !ok {
		return evaluation{}, false
	}

	d := profile.delta
	if c.Strength.IsKnown() {
		switch {
		case c.IsFavorable(target.Stem.Element()):
			d = d.add(stemFavorableDelta)
		case c.IsUnfavorable(target.Stem.Element()):
			d = d.add(stemUnfavorableDelta)
		}
		switch {
		case c.IsFavorable(target.Branch.Element()):
			d = d.add(branchFavorableDelta)
		case c.IsUnfavorable(target.Branch.Element()):
			d = d.add(branchUnfavorDelta)
		}
	}

	opportunities := append([]string(nil), profile.opportunities...)
	challenges := append([]string(nil), profile.challenges...)
	if target.Branch.Harmonizes(c.DayBranch()) {
		d = d.add(harmonyDelta)
		opportunities = append([]string{HarmonyKeyword}, opportunities...)
	}
	if target.Branch.Clashes(c.DayBranch()) {
		d = d.add(clashDelta)
		challenges = append([]string{ClashKeyword}, challenges...)
	}

	n := NeutralScore.Int()
	return evaluation{
		relation: relation,
		scores: Scores{
			Energy:   clamp(n + d.energy),
			Focus:    clamp(n + d.focus),
			Social:   clamp(n + d.social),
			Decision: clamp(n + d.decision),
		},
		theme:         profile.theme,
		opportunities: opportunities[:KeywordCount],
		challenges:    challenges[:KeywordCount],
	}, true
}

// windowOrder sorts windows starting from the 卯 hour (05:00), so waking hours
// come first and the late-night 子 window comes last.
func windowOrder(w chart.TimeWindow) int {
	return (w.StartHour - 5 + 24) % 24
}

func sortWindows(ws []chart.TimeWindow) {
	sort.SliceStable(ws, func(i, j int) bool { return windowOrder(ws[i]) < windowOrder(ws[j]) })
}

// timeWindows derives favorable and unfavorable windows for a target branch.
// The window clashing the target branch is always unfavorable and listed first.
func timeWindows(c chart.Chart, target chart.Branch) (favorable, unfavorable []chart.TimeWindow) {
	clash := chart.Branch((int(target) + 6) % chart.BranchCount)

	var good, bad []chart.TimeWindow
	for b := chart.Branch(0); b < chart.BranchCount; b++ {
		if b == clash {
			continue
		}
		switch {
		case c.IsFavorable(b.Element()):
			good = append(good, b.HourWindow())
		case c.IsUnfavorable(b.Element()):
			bad = append(bad, b.HourWindow())
		}
	}
	sortWindows(good)
	sortWindows(bad)

	if len(good) == 0 {
		for _, w := range fallbackWindows {
			if w.Branch != clash {
				good = append(good, w)
			}
		}
	}
	if len(good) > MaxWindows {
		good = good[:MaxWindows]
	}

	unfavorable = append([]chart.TimeWindow{clash.HourWindow()}, bad...)
	if len(unfavorable) > MaxWindows {
		unfavorable = unfavorable[:MaxWindows]
	}
	return good, unfavorable
}

// directions maps favorable elements onto compass directions.
func directions(c chart.Chart) []Direction {
	out := make([]Direction, 0, MaxDirections)
	for _, e := range c.Favorable {
		if len(out) == MaxDirections {
			break
		}
		out = append(out, DirectionOf(e))
	}
	if len(out) == 0 {
		out = append(out, DirectionCenter)
	}
	return out
}
