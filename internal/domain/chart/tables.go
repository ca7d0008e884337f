package chart

import (
	"fmt"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// FIVE ELEMENTS
// ══════════════════════════════════════════════════════════════════════════════

// Element is one of the five elements, in generating-cycle order.
type Element int

const (
	Wood Element = iota
	Fire
	Earth
	Metal
	Water
)

// ElementCount is the number of elements.
const ElementCount = 5

// AllElements lists the elements in canonical order.
var AllElements = [ElementCount]Element{Wood, Fire, Earth, Metal, Water}

var elementNames = [ElementCount]string{"wood", "fire", "earth", "metal", "water"}
var elementHanja = [ElementCount]string{"木", "火", "土", "金", "水"}

// IsValid reports whether e is one of the five elements.
func (e Element) IsValid() bool { return e >= Wood && e <= Water }

// String returns the lowercase English name.
func (e Element) String() string {
	if !e.IsValid() {
		return fmt.Sprintf("element(%d)", int(e))
	}
	return elementNames[e]
}

// Hanja returns the classical character of the element.
func (e Element) Hanja() string {
	if !e.IsValid() {
		return "?"
	}
	return elementHanja[e]
}

// Generates returns the element e feeds (wood feeds fire, ...).
func (e Element) Generates() Element { return (e + 1) % ElementCount }

// Controls returns the element e restrains (wood restrains earth, ...).
func (e Element) Controls() Element { return (e + 2) % ElementCount }

// ControlledBy returns the element that restrains e.
func (e Element) ControlledBy() Element { return (e + 3) % ElementCount }

// GeneratedBy returns the element that feeds e.
func (e Element) GeneratedBy() Element { return (e + 4) % ElementCount }

// MarshalText encodes the element by name.
func (e Element) MarshalText() ([]byte, error) {
	if !e.IsValid() {
		return nil, fmt.Errorf("invalid element %d", int(e))
	}
	return []byte(elementNames[e]), nil
}

// UnmarshalText decodes an element name.
func (e *Element) UnmarshalText(b []byte) error {
	parsed, err := ParseElement(string(b))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// ParseElement parses an element by English name or hanja.
func ParseElement(s string) (Element, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i := range elementNames {
		if s == elementNames[i] || s == elementHanja[i] {
			return Element(i), nil
		}
	}
	return 0, fmt.Errorf("unknown element %q", s)
}

// ══════════════════════════════════════════════════════════════════════════════
// RELATIONS TO THE DAY MASTER
// ══════════════════════════════════════════════════════════════════════════════

// Relation classifies an element relative to the day-master element.
type Relation string

const (
	RelationCompanion Relation = "companion" // same element
	RelationResource  Relation = "resource"  // feeds the day master
	RelationOutput    Relation = "output"    // fed by the day master
	RelationWealth    Relation = "wealth"    // restrained by the day master
	RelationOfficer   Relation = "officer"   // restrains the day master
)

// AllRelations lists relations in a stable order.
var AllRelations = []Relation{RelationCompanion, RelationResource, RelationOutput, RelationWealth, RelationOfficer}

// RelationOf returns how other relates to the day master dm.
func RelationOf(dm, other Element) Relation {
	switch other {
	case dm:
		return RelationCompanion
	case dm.GeneratedBy():
		return RelationResource
	case dm.Generates():
		return RelationOutput
	case dm.Controls():
		return RelationWealth
	default:
		return RelationOfficer
	}
}

// ElementFor returns the element standing in relation r to dm.
func ElementFor(dm Element, r Relation) Element {
	switch r {
	case RelationResource:
		return dm.GeneratedBy()
	case RelationOutput:
		return dm.Generates()
	case RelationWealth:
		return dm.Controls()
	case RelationOfficer:
		return dm.ControlledBy()
	default:
		return dm
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// HEAVENLY STEMS
// ══════════════════════════════════════════════════════════════════════════════

// Stem is one of the ten heavenly stems, 0 = 甲.
type Stem int

// StemCount is the length of the stem cycle.
const StemCount = 10

var stemHanja = [StemCount]string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"}
var stemHangul = [StemCount]string{"갑", "을", "병", "정", "무", "기", "경", "신", "임", "계"}

// IsValid reports whether s is within the cycle.
func (s Stem) IsValid() bool { return s >= 0 && s < StemCount }

// Element returns the stem's element: two consecutive stems per element.
func (s Stem) Element() Element { return Element(int(s) / 2) }

// IsYang reports whether the stem is yang (even position).
func (s Stem) IsYang() bool { return s%2 == 0 }

// String returns the hanja of the stem.
func (s Stem) String() string {
	if !s.IsValid() {
		return "?"
	}
	return stemHanja[s]
}

// Hangul returns the Korean reading of the stem.
func (s Stem) Hangul() string {
	if !s.IsValid() {
		return "?"
	}
	return stemHangul[s]
}

// MarshalText encodes the stem as hanja.
func (s Stem) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid stem %d", int(s))
	}
	return []byte(stemHanja[s]), nil
}

// UnmarshalText decodes a stem from hanja or hangul.
func (s *Stem) UnmarshalText(b []byte) error {
	v := strings.TrimSpace(string(b))
	for i := 0; i < StemCount; i++ {
		if v == stemHanja[i] || v == stemHangul[i] {
			*s = Stem(i)
			return nil
		}
	}
	return fmt.Errorf("unknown stem %q", v)
}

// ══════════════════════════════════════════════════════════════════════════════
// EARTHLY BRANCHES
// ══════════════════════════════════════════════════════════════════════════════

// Branch is one of the twelve earthly branches, 0 = 子.
type Branch int

// BranchCount is the length of the branch cycle.
const BranchCount = 12

var branchHanja = [BranchCount]string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}
var branchHangul = [BranchCount]string{"자", "축", "인", "묘", "진", "사", "오", "미", "신", "유", "술", "해"}
var branchElements = [BranchCount]Element{Water, Earth, Wood, Wood, Earth, Fire, Fire, Earth, Metal, Metal, Earth, Water}

// IsValid reports whether b is within the cycle.
func (b Branch) IsValid() bool { return b >= 0 && b < BranchCount }

// Element returns the branch's principal element.
func (b Branch) Element() Element { return branchElements[b] }

// Clashes reports whether b and other sit opposite each other (六沖).
func (b Branch) Clashes(other Branch) bool { return (int(b)+6)%BranchCount == int(other) }

// Harmonizes reports whether b and other form one of the six harmonies (六合).
// The six pairs are exactly the pairs whose indices sum to 1 mod 12.
func (b Branch) Harmonizes(other Branch) bool { return (int(b)+int(other))%BranchCount == 1 }

// String returns the hanja of the branch.
func (b Branch) String() string {
	if !b.IsValid() {
		return "?"
	}
	return branchHanja[b]
}

// Hangul returns the Korean reading of the branch.
func (b Branch) Hangul() string {
	if !b.IsValid() {
		return "?"
	}
	return branchHangul[b]
}

// MarshalText encodes the branch as hanja.
func (b Branch) MarshalText() ([]byte, error) {
	if !b.IsValid() {
		return nil, fmt.Errorf("invalid branch %d", int(b))
	}
	return []byte(branchHanja[b]), nil
}

// UnmarshalText decodes a branch from hanja or hangul.
func (b *Branch) UnmarshalText(data []byte) error {
	v := strings.TrimSpace(string(data))
	for i := 0; i < BranchCount; i++ {
		if v == branchHanja[i] || v == branchHangul[i] {
			*b = Branch(i)
			return nil
		}
	}
	return fmt.Errorf("unknown branch %q", v)
}

// HourWindow returns the two-hour civil window governed by the branch.
// 子 covers 23:00-01:00, 丑 01:00-03:00, and so on.
func (b Branch) HourWindow() TimeWindow {
	start := (2*int(b) + 23) % 24
	return TimeWindow{Branch: b, StartHour: start, EndHour: (start + 2) % 24}
}

// HourBranch maps a clock hour onto its branch.
func HourBranch(hour int) Branch {
	return Branch(((hour + 1) / 2) % BranchCount)
}

// TimeWindow is a two-hour branch window of the day.
type TimeWindow struct {
	Branch    Branch `json:"branch"`
	StartHour int    `json:"start_hour"`
	EndHour   int    `json:"end_hour"`
}

// String formats the window as "HH:00-HH:00".
func (w TimeWindow) String() string {
	return fmt.Sprintf("%02d:00-%02d:00", w.StartHour, w.EndHour)
}

// ══════════════════════════════════════════════════════════════════════════════
// PILLARS
// ══════════════════════════════════════════════════════════════════════════════

// Pillar is a stem-branch pair of the sexagenary cycle.
type Pillar struct {
	Stem   Stem   `json:"stem"`
	Branch Branch `json:"branch"`
}

// PillarAt returns the pillar at a sexagenary index (any integer, reduced mod 60).
func PillarAt(index int) Pillar {
	i := mod(index, 60)
	return Pillar{Stem: Stem(i % StemCount), Branch: Branch(i % BranchCount)}
}

// Index returns the pillar's position 0..59 in the sexagenary cycle.
// Stem and branch parity must agree; otherwise -1 is returned.
func (p Pillar) Index() int {
	if !p.IsValid() {
		return -1
	}
	return mod(6*int(p.Stem)-5*int(p.Branch), 60)
}

// IsValid reports whether the pair exists in the sexagenary cycle.
func (p Pillar) IsValid() bool {
	return p.Stem.IsValid() && p.Branch.IsValid() && int(p.Stem)%2 == int(p.Branch)%2
}

// String returns the hanja name, e.g. "甲子".
func (p Pillar) String() string { return p.Stem.String() + p.Branch.String() }

// Hangul returns the Korean reading, e.g. "갑자".
func (p Pillar) Hangul() string { return p.Stem.Hangul() + p.Branch.Hangul() }

// Label returns "甲子(갑자)".
func (p Pillar) Label() string { return fmt.Sprintf("%s(%s)", p.String(), p.Hangul()) }

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
