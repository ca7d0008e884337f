package chart

// Element weights. Stems count more than branches; downstream scores depend on
// these values, so they are part of the chart's compatibility surface.
const (
	StemWeight   = 3
	BranchWeight = 2

	// BalanceTotal is the fixed sum of a chart's element balance (4 pillars).
	BalanceTotal = 4 * (StemWeight + BranchWeight)
)

// Strength thresholds, as a percentage of BalanceTotal held by the day master
// and its resource element.
const (
	StrongThresholdPercent = 55
	WeakThresholdPercent   = 40
)

// Balance is the five-element weight vector, indexed by Element.
type Balance [ElementCount]int

// Of returns the weight of an element.
func (b Balance) Of(e Element) int { return b[e] }

// Total returns the sum of all weights.
func (b Balance) Total() int {
	sum := 0
	for _, w := range b {
		sum += w
	}
	return sum
}

// Percent returns an element's share of the total, rounded down.
func (b Balance) Percent(e Element) int {
	total := b.Total()
	if total == 0 {
		return 0
	}
	return b[e] * 100 / total
}

// ComputeBalance aggregates stem and branch weights of the four pillars.
func ComputeBalance(p Pillars) Balance {
	var b Balance
	for _, pillar := range p.All() {
		b[pillar.Stem.Element()] += StemWeight
		b[pillar.Branch.Element()] += BranchWeight
	}
	return b
}

// Strength is the day-master strength classification. The zero value means the
// strength is unknown, which downstream analysis treats as neutral.
type Strength string

const (
	StrengthUnknown  Strength = ""
	StrengthWeak     Strength = "weak"
	StrengthBalanced Strength = "balanced"
	StrengthStrong   Strength = "strong"
)

// IsKnown reports whether the strength is one of the three classifications.
func (s Strength) IsKnown() bool {
	return s == StrengthWeak || s == StrengthBalanced || s == StrengthStrong
}

// SupportPercent returns the share of the balance that supports the day master:
// its own element plus the element feeding it.
func SupportPercent(b Balance, dm Element) int {
	total := b.Total()
	if total == 0 {
		return 0
	}
	return (b[dm] + b[dm.GeneratedBy()]) * 100 / total
}

// ClassifyStrength buckets the day master by its support share.
func ClassifyStrength(b Balance, dm Element) Strength {
	if b.Total() == 0 {
		return StrengthUnknown
	}
	support := SupportPercent(b, dm)
	switch {
	case support >= StrongThresholdPercent:
		return StrengthStrong
	case support <= WeakThresholdPercent:
		return StrengthWeak
	default:
		return StrengthBalanced
	}
}

// preferenceRule lists which relations a strength class favors and disfavors.
type preferenceRule struct {
	favor    []Relation
	disfavor []Relation
}

// preferenceTable is the single source of truth for favorable/unfavorable elements.
// Daily, monthly and yearly analysis all read it through ElementPreference.
var preferenceTable = map[Strength]preferenceRule{
	StrengthWeak: {
		favor:    []Relation{RelationCompanion, RelationResource},
		disfavor: []Relation{RelationOutput, RelationWealth, RelationOfficer},
	},
	StrengthStrong: {
		favor:    []Relation{RelationOutput, RelationWealth, RelationOfficer},
		disfavor: []Relation{RelationCompanion, RelationResource},
	},
	StrengthBalanced: {
		favor:    []Relation{RelationOutput, RelationWealth},
		disfavor: []Relation{RelationOfficer},
	},
}

// ElementPreference returns the favorable and unfavorable element sets for a day
// master of the given strength, each in canonical element order. Unknown strength
// yields two empty sets.
func ElementPreference(dm Element, s Strength) (favorable, unfavorable []Element) {
	rule, ok := preferenceTable[s]
	if !ok {
		return []Element{}, []Element{}
	}
	return elementsFor(dm, rule.favor), elementsFor(dm, rule.disfavor)
}

func elementsFor(dm Element, relations []Relation) []Element {
	var set [ElementCount]bool
	for _, r := range relations {
		set[ElementFor(dm, r)] = true
	}
	out := make([]Element, 0, len(relations))
	for _, e := range AllElements {
		if set[e] {
			out = append(out, e)
		}
	}
	return out
}

// ContainsElement reports whether e is in set.
func ContainsElement(set []Element, e Element) bool {
	for _, x := range set {
		if x == e {
			return true
		}
	}
	return false
}
