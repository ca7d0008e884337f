package content

import (
	"encoding/binary"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/rhythm-hub/rhythm-core/internal/domain/chart"
	"github.com/rhythm-hub/rhythm-core/internal/domain/rhythm"
	"github.com/rhythm-hub/rhythm-core/internal/domain/shared"
)

// Placeholders understood by templates.
const (
	PlaceholderTheme       = "theme"
	PlaceholderOpportunity = "opportunity"
	PlaceholderChallenge   = "challenge"
	PlaceholderDirection   = "direction"
	PlaceholderSpan        = "span"
)

var placeholderPattern = regexp.MustCompile(`\{[a-z_]+\}`)

var spanWords = map[rhythm.Scale]string{
	rhythm.ScaleDay:   "today",
	rhythm.ScaleMonth: "this month",
	rhythm.ScaleYear:  "this year",
}

// Choose returns a stable index in [0,n) for key: the first eight bytes of
// BLAKE2b-256(key), big-endian, modulo n.
func Choose(key string, n int) int {
	if n <= 1 {
		return 0
	}
	sum := blake2b.Sum256([]byte(key))
	return int(binary.BigEndian.Uint64(sum[:8]) % uint64(n))
}

// Assembler fills template pools from a rhythm signal. It is safe for concurrent use.
type Assembler struct {
	pools *Pools
}

// NewAssembler creates an assembler over a loaded pool set.
func NewAssembler(pools *Pools) *Assembler {
	return &Assembler{pools: pools}
}

// Assemble builds the content document of a signal. The same signal always
// yields the same document.
func (a *Assembler) Assemble(sig rhythm.Signal) (Content, error) {
	const op = "Assemble"

	if a.pools == nil {
		return Content{}, shared.NewDomainError("content", op, shared.ErrAssembly, "assembler has no template pools")
	}
	if err := sig.Scores.Validate(); err != nil {
		return Content{}, shared.WrapError("content", op, shared.ErrAssembly, "signal scores out of range", err)
	}
	span, ok := spanWords[sig.Scale]
	if !ok {
		return Content{}, shared.NewDomainError("content", op, shared.ErrAssembly, fmt.Sprintf("unknown signal scale %q", sig.Scale))
	}
	if len(sig.FavorableTimes) == 0 || len(sig.UnfavorableTimes) == 0 || len(sig.FavorableDirections) == 0 {
		return Content{}, shared.NewDomainError("content", op, shared.ErrAssembly, "signal has no time windows or directions")
	}

	b := &builder{
		pools: a.pools,
		seed:  sig.Period() + "|" + sig.Pillar.String(),
		values: map[string]string{
			PlaceholderTheme:       sig.Theme,
			PlaceholderOpportunity: first(sig.Opportunities),
			PlaceholderChallenge:   first(sig.Challenges),
			PlaceholderDirection:   string(sig.FavorableDirections[0]),
			PlaceholderSpan:        span,
		},
	}

	s := sig.Scores
	c := Content{
		Scale:       sig.Scale,
		Period:      sig.Period(),
		Theme:       sig.Theme,
		Scores:      s,
		Summary:     b.text(FieldSummary, a.pools.Summary, s.Energy),
		Keywords:    b.list(FieldKeywords, a.pools.Keywords, s.Energy),
		Description: b.text("description.energy", a.pools.DescriptionEnergy, s.Energy) + " " + b.text("description.social", a.pools.DescriptionSocial, s.Social),
		Focus: FocusBlock{
			Focus:   b.list(FieldFocus, a.pools.Focus, s.Focus),
			Caution: b.list(FieldCaution, a.pools.Caution, s.Focus),
		},
		Actions: ActionBlock{
			Do:    b.list(FieldDo, a.pools.Do, s.Decision),
			Avoid: b.list(FieldAvoid, a.pools.Avoid, s.Decision),
		},
		TimeDirection: TimeDirection{
			BestTimes:  windowLabels(sig.FavorableTimes),
			AvoidTimes: windowLabels(sig.UnfavorableTimes),
			Directions: directionLabels(sig.FavorableDirections),
		},
		StateTrigger: b.trigger(s.Energy),
		MeaningShift: b.text(FieldMeaningShift, a.pools.MeaningShift, s.Decision),
		Question:     b.text(FieldQuestion, a.pools.Question, s.Focus),
	}
	if b.err != nil {
		return Content{}, shared.WrapError("content", op, shared.ErrAssembly, "fill templates", b.err)
	}
	return c, nil
}

// builder records the first fill error so Assemble can read as a flat struct literal.
type builder struct {
	pools  *Pools
	seed   string
	values map[string]string
	err    error
}

func (b *builder) choose(field string, n int) int {
	return Choose(b.seed+"|"+field, n)
}

func (b *builder) text(field string, pool TextPool, bucket rhythm.Score) string {
	candidates := pool[bucket.Int()]
	if len(candidates) == 0 {
		b.fail(fmt.Errorf("%s: no templates for bucket %d", field, bucket))
		return ""
	}
	return b.fill(field, candidates[b.choose(field, len(candidates))])
}

func (b *builder) list(field string, pool ListPool, bucket rhythm.Score) []string {
	candidates := pool[bucket.Int()]
	if len(candidates) == 0 {
		b.fail(fmt.Errorf("%s: no templates for bucket %d", field, bucket))
		return nil
	}
	chosen := candidates[b.choose(field, len(candidates))]
	out := make([]string, 0, len(chosen))
	for _, item := range chosen {
		out = append(out, b.fill(field, item))
	}
	return out
}

func (b *builder) trigger(bucket rhythm.Score) StateTrigger {
	candidates := b.pools.StateTrigger[bucket.Int()]
	if len(candidates) == 0 {
		b.fail(fmt.Errorf("state_trigger: no templates for bucket %d", bucket))
		return StateTrigger{}
	}
	return candidates[b.choose("state_trigger", len(candidates))]
}

func (b *builder) fill(field, template string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(m string) string {
		key := strings.Trim(m, "{}")
		v, ok := b.values[key]
		switch {
		case !ok:
			b.fail(fmt.Errorf("%s: unknown placeholder %s", field, m))
		case v == "":
			b.fail(fmt.Errorf("%s: no value for placeholder %s", field, m))
		}
		return v
	})
}

func (b *builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func windowLabels(ws []chart.TimeWindow) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.String())
	}
	return out
}

func directionLabels(ds []rhythm.Direction) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, string(d))
	}
	return out
}
