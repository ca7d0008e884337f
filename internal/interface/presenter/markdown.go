// Package presenter renders assembled content for people. Fields are looked up
// by their stable keys, so the layout never depends on struct shape.
package presenter

import (
	"fmt"
	"strings"

	"github.com/rhythm-hub/rhythm-core/internal/domain/chart"
	"github.com/rhythm-hub/rhythm-core/internal/domain/content"
	"github.com/rhythm-hub/rhythm-core/internal/domain/rhythm"
)

// ══════════════════════════════════════════════════════════════════════════════
// LAYOUT
// ══════════════════════════════════════════════════════════════════════════════

type sectionKind int

const (
	paragraph sectionKind = iota
	quote
	inline
	bullets
	emphasis
)

// section places one field on the page.
type section struct {
	key     string
	heading string
	kind    sectionKind
}

// defaultLayout is the reading order of a document.
var defaultLayout = []section{
	{key: content.FieldSummary, kind: quote},
	{key: content.FieldKeywords, heading: "Keywords", kind: inline},
	{key: content.FieldDescription, kind: paragraph},
	{key: content.FieldFocus, heading: "Focus", kind: bullets},
	{key: content.FieldCaution, heading: "Caution", kind: bullets},
	{key: content.FieldDo, heading: "Do", kind: bullets},
	{key: content.FieldAvoid, heading: "Avoid", kind: bullets},
	{key: content.FieldBestTimes, heading: "Best times", kind: inline},
	{key: content.FieldAvoidTimes, heading: "Avoid times", kind: inline},
	{key: content.FieldDirections, heading: "Directions", kind: inline},
	{key: content.FieldPosture, heading: "Posture", kind: inline},
	{key: content.FieldBreath, heading: "Breath", kind: inline},
	{key: content.FieldPhrase, heading: "Phrase", kind: inline},
	{key: content.FieldMeaningShift, heading: "Meaning shift", kind: paragraph},
	{key: content.FieldQuestion, heading: "Question", kind: emphasis},
}

// ══════════════════════════════════════════════════════════════════════════════
// MARKDOWN PRESENTER
// ══════════════════════════════════════════════════════════════════════════════

// MarkdownPresenter renders content as Markdown.
type MarkdownPresenter struct {
	layout []section
}

// NewMarkdownPresenter creates a presenter with the default layout.
func NewMarkdownPresenter() *MarkdownPresenter {
	return &MarkdownPresenter{layout: defaultLayout}
}

// Render formats one document. Empty fields are left out.
func (p *MarkdownPresenter) Render(c content.Content) string {
	texts := make(map[string]string)
	for _, f := range c.TextFields() {
		texts[f.Key] = strings.TrimSpace(f.Value)
	}
	lists := make(map[string][]string)
	for _, f := range c.ListFields() {
		lists[f.Key] = f.Items
	}

	var sb strings.Builder
	sb.WriteString(p.formatHeader(c))
	sb.WriteString("\n\n")
	sb.WriteString(p.formatScores(c.Scores))

	for _, s := range p.layout {
		block := p.formatSection(s, texts[s.key], lists[s.key])
		if block == "" {
			continue
		}
		sb.WriteString("\n")
		sb.WriteString(block)
	}
	return sb.String()
}

// RenderMany formats several documents separated by rules.
func (p *MarkdownPresenter) RenderMany(docs []content.Content) string {
	parts := make([]string, 0, len(docs))
	for _, c := range docs {
		parts = append(parts, p.Render(c))
	}
	return strings.Join(parts, "\n---\n\n")
}

func (p *MarkdownPresenter) formatHeader(c content.Content) string {
	title := strings.TrimSpace(c.Theme)
	if title == "" {
		title = "Rhythm"
	}
	return fmt.Sprintf("# %s\n\n_%s · %s_", title, scaleLabel(c.Scale), c.Period)
}

func (p *MarkdownPresenter) formatScores(s rhythm.Scores) string {
	rows := []struct {
		name  string
		score rhythm.Score
	}{
		{"Energy", s.Energy},
		{"Focus", s.Focus},
		{"Social", s.Social},
		{"Decision", s.Decision},
	}
	var sb strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&sb, "- %-8s `%s` %d/5\n", r.name, scoreBar(r.score), r.score)
	}
	return sb.String()
}

func (p *MarkdownPresenter) formatSection(s section, text string, items []string) string {
	switch s.kind {
	case quote:
		if text == "" {
			return ""
		}
		return "> " + text + "\n"
	case paragraph:
		if text == "" {
			return ""
		}
		if s.heading == "" {
			return text + "\n"
		}
		return "## " + s.heading + "\n\n" + text + "\n"
	case emphasis:
		if text == "" {
			return ""
		}
		return "## " + s.heading + "\n\n_" + text + "_\n"
	case inline:
		if text != "" {
			return "**" + s.heading + ":** " + text + "\n"
		}
		if len(items) == 0 {
			return ""
		}
		return "**" + s.heading + ":** " + strings.Join(items, " · ") + "\n"
	case bullets:
		if len(items) == 0 {
			return ""
		}
		var sb strings.Builder
		sb.WriteString("## " + s.heading + "\n\n")
		for _, item := range items {
			sb.WriteString("- " + item + "\n")
		}
		return sb.String()
	}
	return ""
}

// RenderChart renders the four pillars as a table followed by the element
// balance and the favorable sets.
func (p *MarkdownPresenter) RenderChart(ch chart.Chart) string {
	var sb strings.Builder
	sb.WriteString("# Chart\n\n")
	sb.WriteString("| Hour | Day | Month | Year |\n|---|---|---|---|\n")
	fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n\n",
		ch.Pillars.Hour.Label(), ch.Pillars.Day.Label(), ch.Pillars.Month.Label(), ch.Pillars.Year.Label())

	fmt.Fprintf(&sb, "**Day master:** %s (%s), %s, %d%% support\n\n",
		ch.DayMaster, ch.DayMasterElement, ch.Strength, ch.SupportPercent)

	sb.WriteString("## Balance\n\n")
	for _, e := range chart.AllElements {
		fmt.Fprintf(&sb, "- %-6s %s %d\n", e, e.Hanja(), ch.Balance.Of(e))
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "**Favorable:** %s\n\n", joinElements(ch.Favorable))
	fmt.Fprintf(&sb, "**Unfavorable:** %s\n", joinElements(ch.Unfavorable))
	return sb.String()
}

func joinElements(es []chart.Element) string {
	if len(es) == 0 {
		return "none"
	}
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// scoreBar draws a five-cell bar.
func scoreBar(s rhythm.Score) string {
	filled := int(s)
	if filled < 0 {
		filled = 0
	}
	if filled > 5 {
		filled = 5
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", 5-filled)
}

func scaleLabel(s rhythm.Scale) string {
	switch s {
	case rhythm.ScaleDay:
		return "Daily"
	case rhythm.ScaleMonth:
		return "Monthly"
	case rhythm.ScaleYear:
		return "Yearly"
	default:
		return string(s)
	}
}
