// Package deck loads the study content: vocabulary decks grouped by
// category and the verb conjugation dataset.
package deck

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/conorfennell/fluentdeck/internal/cardid"
	"github.com/conorfennell/fluentdeck/internal/domain"
	"github.com/conorfennell/fluentdeck/internal/parser"
)

// ErrUnknownCategory is returned for a category with no deck.
var ErrUnknownCategory = errors.New("deck: unknown category")

// Library holds the loaded decks and verbs. It is read-only once built.
type Library struct {
	cards map[domain.Category][]domain.Card
	verbs []domain.Verb
}

// CategoryInfo describes one loaded deck.
type CategoryInfo struct {
	Category domain.Category `json:"category"`
	Cards    int             `json:"cards"`
}

// NewLibrary builds a library from already loaded content.
func NewLibrary(cards map[domain.Category][]domain.Card, verbs []domain.Verb) *Library {
	if cards == nil {
		cards = map[domain.Category][]domain.Card{}
	}
	return &Library{cards: cards, verbs: verbs}
}

// LoadDirs walks each directory for "<category>.md" deck files. Files whose
// name is not a vocabulary category are skipped. Cards from several
// directories are merged; a card seen twice keeps its first occurrence.
func LoadDirs(logger *slog.Logger, dirs ...string) (*Library, error) {
	if logger == nil {
		logger = slog.Default()
	}
	lib := NewLibrary(nil, nil)
	seen := make(map[string]bool)
	var parseErrors []error

	for _, dir := range dirs {
		walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
				return nil
			}
			category := domain.Category(strings.ToLower(strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))))
			if !category.IsVocabulary() {
				logger.Warn("Skipping deck with unknown category", "path", path, "category", category)
				return nil
			}

			cards, parseErr := parser.ParseFile(path)
			if parseErr != nil {
				parseErrors = append(parseErrors, fmt.Errorf("parsing %s: %w", path, parseErr))
				return nil
			}
			for _, card := range cards {
				card.Category = category
				card.ID = cardid.ID(card)
				if seen[card.ID] {
					continue
				}
				seen[card.ID] = true
				lib.cards[category] = append(lib.cards[category], card)
			}
			logger.Debug("Deck loaded", "path", path, "category", category, "cards", len(cards))
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("failed to walk deck directory %s: %w", dir, walkErr)
		}
	}

	if len(parseErrors) > 0 {
		return lib, errors.Join(parseErrors...)
	}
	return lib, nil
}

// WithVerbs returns a copy of the library using verbs as its conjugation set.
func (l *Library) WithVerbs(verbs []domain.Verb) *Library {
	return &Library{cards: l.cards, verbs: verbs}
}

// Categories lists the loaded decks in display order.
func (l *Library) Categories() []CategoryInfo {
	var out []CategoryInfo
	for _, c := range domain.VocabularyCategories {
		if n := len(l.cards[c]); n > 0 {
			out = append(out, CategoryInfo{Category: c, Cards: n})
		}
	}
	return out
}

// Cards returns the cards of a category in file order.
func (l *Library) Cards(category domain.Category) ([]domain.Card, error) {
	cards, ok := l.cards[category]
	if !ok || len(cards) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	return append([]domain.Card(nil), cards...), nil
}

// Card finds a card by id.
func (l *Library) Card(id string) (domain.Card, bool) {
	for _, cards := range l.cards {
		for _, c := range cards {
			if c.ID == id {
				return c, true
			}
		}
	}
	return domain.Card{}, false
}

// Verbs returns the conjugation dataset sorted by infinitive.
func (l *Library) Verbs() []domain.Verb {
	out := append([]domain.Verb(nil), l.verbs...)
	sort.Slice(out, func(i, j int) bool { return out[i].Infinitive < out[j].Infinitive })
	return out
}
