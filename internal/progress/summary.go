package progress

import "github.com/conorfennell/fluentdeck/internal/domain"

const recentSessions = 5

// Summary is the derived view rendered by the dashboard.
type Summary struct {
	Streak         int                   `json:"streak"`
	LastStudyDate  *string               `json:"lastStudyDate"`
	StudiedCards   int                   `json:"studiedCards"`
	MasteredCards  int                   `json:"masteredCards"`
	CardMastery    int                   `json:"cardMastery"`
	StudiedVerbs   int                   `json:"studiedVerbs"`
	MasteredVerbs  int                   `json:"masteredVerbs"`
	VerbMastery    int                   `json:"verbMastery"`
	TrackedItems   int                   `json:"trackedItems"`
	ConfidentItems int                   `json:"confidentItems"`
	Recent         []domain.StudySession `json:"recent"`
}

// Summarize computes mastery percentages and the most recent sessions.
func Summarize(state domain.ProgressState) Summary {
	t := state.Totals
	s := Summary{
		Streak:        t.Streak,
		LastStudyDate: t.LastStudyDate,
		StudiedCards:  t.StudiedCards,
		MasteredCards: t.MasteredCards,
		CardMastery:   MasteryPercent(t.MasteredCards, t.StudiedCards),
		StudiedVerbs:  t.StudiedVerbs,
		MasteredVerbs: t.MasteredVerbs,
		VerbMastery:   MasteryPercent(t.MasteredVerbs, t.StudiedVerbs),
		TrackedItems:  len(state.Checkpoints),
	}
	for _, cp := range state.Checkpoints {
		if cp.Confidence == maxConfidence {
			s.ConfidentItems++
		}
	}
	n := min(recentSessions, len(state.Sessions))
	s.Recent = append([]domain.StudySession{}, state.Sessions[:n]...)
	return s
}
