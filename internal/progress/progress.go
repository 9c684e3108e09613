// Package progress holds the pure state transitions of the study tracker.
// Every function returns a new state and leaves its input untouched.
package progress

import (
	"math"
	"time"

	"github.com/conorfennell/fluentdeck/internal/domain"
)

const (
	msPerDay = int64(24 * time.Hour / time.Millisecond)

	maxConfidence      = 2
	maxIncorrectStreak = 3

	// isoLayout matches the millisecond UTC timestamps stored in lastStudyDate.
	isoLayout = "2006-01-02T15:04:05.000Z"
)

// NewState returns the baseline state: zero totals, no checkpoints and no
// sessions.
func NewState() domain.ProgressState {
	return domain.ProgressState{
		Checkpoints: map[string]domain.StudyCheckpoint{},
		Sessions:    []domain.StudySession{},
	}
}

// AddStudySession folds a completed session into the state. The session is
// prepended to the history, which is capped at domain.MaxSessions.
func AddStudySession(state domain.ProgressState, session domain.StudySession) domain.ProgressState {
	n := min(len(state.Sessions)+1, domain.MaxSessions)
	sessions := make([]domain.StudySession, 0, n)
	sessions = append(sessions, session)
	sessions = append(sessions, state.Sessions[:n-1]...)

	totals := state.Totals
	if session.Category.IsVerbs() {
		totals.StudiedVerbs += session.Total
		totals.MasteredVerbs += session.Correct
	} else {
		totals.StudiedCards += session.Total
		totals.MasteredCards += session.Correct
	}

	totals.Streak = CalculateStreak(state.Totals.LastStudyDate, session.Timestamp, state.Totals.Streak)
	last := FormatISO(session.Timestamp)
	totals.LastStudyDate = &last

	return domain.ProgressState{
		Totals:      totals,
		Checkpoints: state.Checkpoints,
		Sessions:    sessions,
	}
}

// CalculateStreak derives the next streak value from the previous study
// instant. Days are 24h buckets since the last session, not calendar dates.
func CalculateStreak(lastStudyISO *string, nextTimestamp int64, currentStreak int) int {
	if lastStudyISO == nil || *lastStudyISO == "" {
		return 1
	}
	last, err := time.Parse(time.RFC3339Nano, *lastStudyISO)
	if err != nil {
		return 1
	}

	diffDays := floorDiv(nextTimestamp-last.UnixMilli(), msPerDay)
	switch {
	case diffDays <= 0:
		return max(1, currentStreak)
	case diffDays == 1:
		return currentStreak + 1
	default:
		return 1
	}
}

// UpdateCheckpoint folds one answer for itemID into its checkpoint, creating
// the checkpoint on first sight.
func UpdateCheckpoint(state domain.ProgressState, itemID string, correct bool, now time.Time) domain.ProgressState {
	cp, ok := state.Checkpoints[itemID]
	if !ok {
		cp = domain.StudyCheckpoint{CardID: itemID}
	}

	if correct {
		cp.CorrectStreak++
		cp.IncorrectStreak = 0
		cp.Confidence = min(maxConfidence, cp.Confidence+1)
	} else {
		cp.CorrectStreak = 0
		cp.IncorrectStreak = min(cp.IncorrectStreak+1, maxIncorrectStreak)
		cp.Confidence = max(0, cp.Confidence-1)
	}
	at := now.UnixMilli()
	cp.LastStudiedAt = &at

	checkpoints := make(map[string]domain.StudyCheckpoint, len(state.Checkpoints)+1)
	for id, existing := range state.Checkpoints {
		checkpoints[id] = existing
	}
	checkpoints[itemID] = cp

	return domain.ProgressState{
		Totals:      state.Totals,
		Checkpoints: checkpoints,
		Sessions:    state.Sessions,
	}
}

// FormatISO renders a unix millisecond timestamp the way lastStudyDate is
// stored.
func FormatISO(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(isoLayout)
}

// MasteryPercent returns mastered/studied as a rounded percentage, or 0 when
// nothing was studied.
func MasteryPercent(mastered, studied int) int {
	if studied == 0 {
		return 0
	}
	return int(math.Round(float64(mastered) / float64(studied) * 100))
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
