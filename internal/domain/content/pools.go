package content

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/rhythm-hub/rhythm-core/internal/domain/rhythm"
	"github.com/rhythm-hub/rhythm-core/internal/domain/shared"
)

//go:embed templates/pools.yaml
var defaultPoolsYAML []byte

// ListSize is the fixed cardinality of keyword, focus, caution, do and avoid lists.
const ListSize = 3

// TextPool maps a signal bucket to candidate templates.
type TextPool map[int][]string

// ListPool maps a signal bucket to candidate lists of ListSize items.
type ListPool map[int][][]string

// TriggerPool maps a signal bucket to candidate state triggers.
type TriggerPool map[int][]StateTrigger

// Pools is the complete, read-only template set used by the Assembler.
type Pools struct {
	Summary           TextPool    `yaml:"summary"`
	Keywords          ListPool    `yaml:"keywords"`
	DescriptionEnergy TextPool    `yaml:"description_energy"`
	DescriptionSocial TextPool    `yaml:"description_social"`
	Focus             ListPool    `yaml:"focus"`
	Caution           ListPool    `yaml:"caution"`
	Do                ListPool    `yaml:"do"`
	Avoid             ListPool    `yaml:"avoid"`
	StateTrigger      TriggerPool `yaml:"state_trigger"`
	MeaningShift      TextPool    `yaml:"meaning_shift"`
	Question          TextPool    `yaml:"question"`
}

// LoadPools parses and checks a pools document. Every pool must cover buckets
// 1..5 with at least one candidate; list candidates must hold exactly ListSize items.
func LoadPools(data []byte) (*Pools, error) {
	var p Pools
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, shared.WrapError("content", "LoadPools", shared.ErrMissingTable, "decode template pools", err)
	}
	if err := p.validate(); err != nil {
		return nil, shared.WrapError("content", "LoadPools", shared.ErrMissingTable, "incomplete template pools", err)
	}
	return &p, nil
}

var (
	defaultOnce  sync.Once
	defaultPools *Pools
	defaultErr   error
)

// DefaultPools returns the embedded template pools, parsed once per process.
func DefaultPools() (*Pools, error) {
	defaultOnce.Do(func() {
		defaultPools, defaultErr = LoadPools(defaultPoolsYAML)
	})
	return defaultPools, defaultErr
}

// MustDefaultPools is DefaultPools for program start-up; it panics on a broken embed.
func MustDefaultPools() *Pools {
	p, err := DefaultPools()
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Pools) validate() error {
	texts := map[string]TextPool{
		"summary":            p.Summary,
		"description_energy": p.DescriptionEnergy,
		"description_social": p.DescriptionSocial,
		"meaning_shift":      p.MeaningShift,
		"question":           p.Question,
	}
	lists := map[string]ListPool{
		"keywords": p.Keywords,
		"focus":    p.Focus,
		"caution":  p.Caution,
		"do":       p.Do,
		"avoid":    p.Avoid,
	}

	for b := int(rhythm.MinScore); b <= int(rhythm.MaxScore); b++ {
		for name, pool := range texts {
			if len(pool[b]) == 0 {
				return fmt.Errorf("%s: bucket %d has no candidates", name, b)
			}
			for i, t := range pool[b] {
				if t == "" {
					return fmt.Errorf("%s: bucket %d candidate %d is empty", name, b, i)
				}
			}
		}
		for name, pool := range lists {
			if len(pool[b]) == 0 {
				return fmt.Errorf("%s: bucket %d has no candidates", name, b)
			}
			for i, items := range pool[b] {
				if len(items) != ListSize {
					return fmt.Errorf("%s: bucket %d candidate %d has %d items, want %d", name, b, i, len(items), ListSize)
				}
			}
		}
		if len(p.StateTrigger[b]) == 0 {
			return fmt.Errorf("state_trigger: bucket %d has no candidates", b)
		}
		for i, t := range p.StateTrigger[b] {
			if t.Posture == "" || t.Breath == "" || t.Phrase == "" {
				return fmt.Errorf("state_trigger: bucket %d candidate %d is incomplete", b, i)
			}
		}
	}
	return nil
}
