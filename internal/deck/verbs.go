package deck

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"go.yaml.in/yaml/v3"

	"github.com/conorfennell/fluentdeck/internal/domain"
)

// ErrIncompleteVerb marks a verb entry missing a tense or person.
var ErrIncompleteVerb = errors.New("deck: incomplete conjugation table")

// LoadVerbs reads the YAML conjugation dataset at path. An empty path yields
// no verbs.
func LoadVerbs(path string) ([]domain.Verb, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read verbs file %s: %w", path, err)
	}
	return ParseVerbs(raw)
}

// ParseVerbs decodes and validates a YAML list of verbs.
func ParseVerbs(raw []byte) ([]domain.Verb, error) {
	var verbs []domain.Verb
	if err := yaml.Unmarshal(raw, &verbs); err != nil {
		return nil, fmt.Errorf("failed to decode verbs: %w", err)
	}

	validate := validator.New()
	for i, v := range verbs {
		if err := validate.Struct(v); err != nil {
			return nil, fmt.Errorf("invalid verb at index %d (%s): %w", i, v.Infinitive, err)
		}
		for _, tense := range domain.Tenses {
			for _, person := range domain.Persons {
				if _, ok := v.Conjugate(tense, person); !ok {
					return nil, fmt.Errorf("%w: %s has no %s form for %s", ErrIncompleteVerb, v.Infinitive, tense, person)
				}
			}
		}
	}
	return verbs, nil
}
