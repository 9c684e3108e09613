package domain

import "time"

// MaxSessions bounds the session history kept in ProgressState.
const MaxSessions = 50

// Category identifies what a study session drilled.
type Category string

const (
	Airport    Category = "airport"
	Directions Category = "directions"
	Doctor     Category = "doctor"
	Greetings  Category = "greetings"
	Hotel      Category = "hotel"
	Pharmacy   Category = "pharmacy"
	Restaurant Category = "restaurant"
	Shopping   Category = "shopping"

	// Verbs is the conjugation drill. It is tracked in its own totals.
	Verbs Category = "verbs"
)

// VocabularyCategories lists the flashcard categories in display order.
var VocabularyCategories = []Category{
	Greetings, Shopping, Restaurant, Pharmacy, Doctor, Hotel, Airport, Directions,
}

// IsVerbs reports whether c is the verb drill category.
func (c Category) IsVerbs() bool {
	return c == Verbs
}

// IsVocabulary reports whether c is one of the flashcard categories.
func (c Category) IsVocabulary() bool {
	for _, v := range VocabularyCategories {
		if c == v {
			return true
		}
	}
	return false
}

// Valid reports whether c is a vocabulary category or Verbs.
func (c Category) Valid() bool {
	return c.IsVerbs() || c.IsVocabulary()
}

// ProgressTotals holds the aggregate counters shown on the dashboard.
// Mastered counts are cumulative correct answers, not distinct items.
type ProgressTotals struct {
	StudiedCards  int     `json:"studiedCards" validate:"min=0"`
	MasteredCards int     `json:"masteredCards" validate:"min=0"`
	StudiedVerbs  int     `json:"studiedVerbs" validate:"min=0"`
	MasteredVerbs int     `json:"masteredVerbs" validate:"min=0"`
	Streak        int     `json:"streak" validate:"min=0"`
	LastStudyDate *string `json:"lastStudyDate"`
}

// StudyCheckpoint is the running confidence record of one item.
type StudyCheckpoint struct {
	CardID          string `json:"cardId"`
	CorrectStreak   int    `json:"correctStreak" validate:"min=0"`
	IncorrectStreak int    `json:"incorrectStreak" validate:"min=0,max=3"`
	LastStudiedAt   *int64 `json:"lastStudiedAt"`
	Confidence      int    `json:"confidence" validate:"min=0,max=2"`
}

// StudySession records one completed drill run. Timestamp is in unix
// milliseconds.
type StudySession struct {
	ID              string   `json:"id" validate:"required"`
	Timestamp       int64    `json:"timestamp"`
	Category        Category `json:"category" validate:"required"`
	Total           int      `json:"total"`
	Correct         int      `json:"correct"`
	Incorrect       int      `json:"incorrect"`
	DurationSeconds int      `json:"durationSeconds"`
}

// Time returns the session timestamp as a time.Time.
func (s StudySession) Time() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// ProgressState is the aggregate root persisted as a single blob.
type ProgressState struct {
	Totals      ProgressTotals             `json:"totals"`
	Checkpoints map[string]StudyCheckpoint `json:"checkpoints"`
	Sessions    []StudySession             `json:"sessions"`
}

// Clone returns a deep copy of s.
func (s ProgressState) Clone() ProgressState {
	out := ProgressState{
		Totals:      s.Totals,
		Checkpoints: make(map[string]StudyCheckpoint, len(s.Checkpoints)),
		Sessions:    make([]StudySession, len(s.Sessions)),
	}
	if s.Totals.LastStudyDate != nil {
		d := *s.Totals.LastStudyDate
		out.Totals.LastStudyDate = &d
	}
	for id, cp := range s.Checkpoints {
		if cp.LastStudiedAt != nil {
			at := *cp.LastStudiedAt
			cp.LastStudiedAt = &at
		}
		out.Checkpoints[id] = cp
	}
	copy(out.Sessions, s.Sessions)
	return out
}
