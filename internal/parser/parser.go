// Package parser reads vocabulary deck files.
//
// A deck is a markdown file of cards separated by "---" lines. Each card is
// a run of prefixed lines:
//
//	PT: Bom dia
//	EN: Good morning
//	EX: Bom dia, tudo bem?
//	TR: Good morning, how are you?
//
// Lines without a prefix continue the previous field. A new PT: line starts
// a new card.
package parser

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/conorfennell/fluentdeck/internal/domain"
)

type field int

const (
	none field = iota
	portuguese
	english
	example
	translation
)

var prefixes = []struct {
	prefix string
	field  field
}{
	{"PT:", portuguese},
	{"EN:", english},
	{"EX:", example},
	{"TR:", translation},
}

const separator = "---"

// ParseFile reads a deck file from the given path and extracts all cards.
func ParseFile(path string) ([]domain.Card, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads from an io.Reader and extracts all cards. Cards without a
// Portuguese term are dropped.
func Parse(r io.Reader) ([]domain.Card, error) {
	scanner := bufio.NewScanner(r)
	var (
		cards   []domain.Card
		current domain.Card
		block   []string
		reading = none
	)

	flushField := func() {
		if reading == none {
			return
		}
		content := strings.TrimSpace(strings.Join(block, "\n"))
		switch reading {
		case portuguese:
			current.Portuguese = content
		case english:
			current.English = content
		case example:
			current.Example = content
		case translation:
			current.ExampleTranslation = content
		}
		block = nil
	}

	finishCard := func() {
		flushField()
		if current.Portuguese != "" {
			cards = append(cards, current)
		}
		current = domain.Card{}
		reading = none
	}

	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(line) == separator {
			finishCard()
			continue
		}

		next, rest, ok := matchPrefix(line)
		if !ok {
			if reading != none {
				block = append(block, line)
			}
			continue
		}

		if next == portuguese && reading != none {
			finishCard()
		} else {
			flushField()
		}
		reading = next
		block = append(block, strings.TrimPrefix(rest, " "))
	}

	finishCard()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}

func matchPrefix(line string) (field, string, bool) {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(line, p.prefix); ok {
			return p.field, rest, true
		}
	}
	return none, "", false
}
