// Package drill builds study rounds from the loaded content and grades
// answers.
package drill

import (
	"errors"
	"math"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/conorfennell/fluentdeck/internal/domain"
	"github.com/conorfennell/fluentdeck/internal/shuffle"
)

// ErrNoVerbs is returned when a verb question is requested without verbs.
var ErrNoVerbs = errors.New("drill: no verbs loaded")

// CardRound returns the cards of one flashcard run in random order. A count
// of zero or less uses the whole deck.
func CardRound(cards []domain.Card, count int) []domain.Card {
	if count <= 0 {
		return shuffle.Shuffle(cards)
	}
	return shuffle.SelectRandom(cards, count)
}

// VerbQuestion asks for one conjugated form.
type VerbQuestion struct {
	Infinitive  string        `json:"infinitive"`
	Translation string        `json:"translation"`
	Tense       domain.Tense  `json:"tense"`
	Person      domain.Person `json:"person"`
	Answer      string        `json:"-"`
}

// NewVerbQuestion picks a random verb, tense and person. Questions may repeat.
func NewVerbQuestion(verbs []domain.Verb) (VerbQuestion, error) {
	verb, ok := shuffle.Pick(verbs)
	if !ok {
		return VerbQuestion{}, ErrNoVerbs
	}
	tense, _ := shuffle.Pick(domain.Tenses)
	person, _ := shuffle.Pick(domain.Persons)
	answer, _ := verb.Conjugate(tense, person)
	return VerbQuestion{
		Infinitive:  verb.Infinitive,
		Translation: verb.Translation,
		Tense:       tense,
		Person:      person,
		Answer:      answer,
	}, nil
}

// Normalize folds an answer for comparison: accents removed, surrounding
// space trimmed, lower case.
func Normalize(s string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// CheckAnswer reports whether input matches expected, ignoring accents and
// case.
func CheckAnswer(input, expected string) bool {
	return Normalize(input) == Normalize(expected)
}

// Summary is the result of one finished run, ready for Store.RecordSession.
type Summary struct {
	Total           int `json:"total"`
	Correct         int `json:"correct"`
	Incorrect       int `json:"incorrect"`
	DurationSeconds int `json:"durationSeconds"`
}

// Tally counts the answers of a run in progress.
type Tally struct {
	start     time.Time
	correct   int
	incorrect int
}

// NewTally starts a run at the given instant.
func NewTally(start time.Time) *Tally {
	return &Tally{start: start}
}

// Record counts one answer.
func (t *Tally) Record(correct bool) {
	if correct {
		t.correct++
	} else {
		t.incorrect++
	}
}

// Finish summarizes the run. Duration is rounded to whole seconds and never
// less than one.
func (t *Tally) Finish(end time.Time) Summary {
	secs := int(math.Round(end.Sub(t.start).Seconds()))
	return Summary{
		Total:           t.correct + t.incorrect,
		Correct:         t.correct,
		Incorrect:       t.incorrect,
		DurationSeconds: max(1, secs),
	}
}
