package role

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/rhythm-hub/rhythm-core/internal/domain/content"
	"github.com/rhythm-hub/rhythm-core/internal/domain/rhythm"
	"github.com/rhythm-hub/rhythm-core/internal/domain/shared"
)

//go:embed lexicon/roles.yaml
var defaultVocabularyYAML []byte

// Pools are the role-specific replacements for whole fields.
type Pools struct {
	Keywords content.ListPool `yaml:"keywords"` // energy bucket
	Do       content.ListPool `yaml:"do"`       // decision bucket
	Avoid    content.ListPool `yaml:"avoid"`    // decision bucket
	Question content.TextPool `yaml:"question"` // focus bucket
}

// Vocabulary is the concept lexicon plus per-role pools. Read-only once loaded.
type Vocabulary struct {
	Lexicon map[string]map[Role]string `yaml:"lexicon"`
	Pools   map[Role]Pools             `yaml:"pools"`
}

// Phrase returns the role phrase of a concept.
func (v *Vocabulary) Phrase(concept string, r Role) (string, bool) {
	phrases, ok := v.Lexicon[concept]
	if !ok {
		return "", false
	}
	p, ok := phrases[r]
	return p, ok
}

// Concepts returns the lexicon concepts, longest first so that multi-word
// concepts win over their prefixes in an alternation.
func (v *Vocabulary) Concepts() []string {
	out := make([]string, 0, len(v.Lexicon))
	for c := range v.Lexicon {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// LoadVocabulary parses and checks a vocabulary document.
func LoadVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, shared.WrapError("role", "LoadVocabulary", shared.ErrMissingTable, "decode role vocabulary", err)
	}
	if err := v.validate(); err != nil {
		return nil, shared.WrapError("role", "LoadVocabulary", shared.ErrMissingTable, "incomplete role vocabulary", err)
	}
	return &v, nil
}

var (
	defaultOnce  sync.Once
	defaultVocab *Vocabulary
	defaultErr   error
)

// DefaultVocabulary returns the embedded vocabulary, parsed once per process.
func DefaultVocabulary() (*Vocabulary, error) {
	defaultOnce.Do(func() {
		defaultVocab, defaultErr = LoadVocabulary(defaultVocabularyYAML)
	})
	return defaultVocab, defaultErr
}

// MustDefaultVocabulary panics if the embedded vocabulary is broken.
func MustDefaultVocabulary() *Vocabulary {
	v, err := DefaultVocabulary()
	if err != nil {
		panic(err)
	}
	return v
}

func (v *Vocabulary) validate() error {
	if len(v.Lexicon) == 0 {
		return fmt.Errorf("lexicon is empty")
	}
	for _, concept := range v.Concepts() {
		for _, r := range All {
			if p, ok := v.Phrase(concept, r); !ok || p == "" {
				return fmt.Errorf("concept %q has no phrase for %s", concept, r)
			}
		}
	}

	for _, r := range All {
		p, ok := v.Pools[r]
		if !ok {
			return fmt.Errorf("no pools for %s", r)
		}
		for b := int(rhythm.MinScore); b <= int(rhythm.MaxScore); b++ {
			for name, pool := range map[string]content.ListPool{"keywords": p.Keywords, "do": p.Do, "avoid": p.Avoid} {
				if len(pool[b]) == 0 {
					return fmt.Errorf("%s %s: bucket %d has no candidates", r, name, b)
				}
				for i, items := range pool[b] {
					if len(items) != content.ListSize {
						return fmt.Errorf("%s %s: bucket %d candidate %d has %d items, want %d", r, name, b, i, len(items), content.ListSize)
					}
				}
			}
			if len(p.Question[b]) == 0 {
				return fmt.Errorf("%s question: bucket %d has no candidates", r, b)
			}
		}
	}
	return nil
}
