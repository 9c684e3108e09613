package progress

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/conorfennell/fluentdeck/internal/domain"
)

const hour = int64(time.Hour / time.Millisecond)

func session(id string, category domain.Category, ts int64, total, correct int) domain.StudySession {
	return domain.StudySession{
		ID:              id,
		Timestamp:       ts,
		Category:        category,
		Total:           total,
		Correct:         correct,
		Incorrect:       total - correct,
		DurationSeconds: 30,
	}
}

func TestNewState(t *testing.T) {
	s := NewState()
	if s.Totals != (domain.ProgressTotals{}) {
		t.Errorf("Expected zero totals, but got %+v", s.Totals)
	}
	if s.Checkpoints == nil || len(s.Checkpoints) != 0 {
		t.Errorf("Expected an empty checkpoint map, but got %v", s.Checkpoints)
	}
	if s.Sessions == nil || len(s.Sessions) != 0 {
		t.Errorf("Expected an empty session list, but got %v", s.Sessions)
	}
}

func TestAddStudySessionFirstSession(t *testing.T) {
	ts := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC).UnixMilli()
	sess := session("s1", domain.Greetings, ts, 5, 4)

	got := AddStudySession(NewState(), sess)

	if got.Totals.StudiedCards != 5 || got.Totals.MasteredCards != 4 {
		t.Errorf("Expected studied=5 mastered=4, but got %+v", got.Totals)
	}
	if got.Totals.Streak != 1 {
		t.Errorf("Expected streak 1, but got %d", got.Totals.Streak)
	}
	if got.Totals.LastStudyDate == nil || *got.Totals.LastStudyDate != "2024-03-10T09:30:00.000Z" {
		t.Errorf("Expected lastStudyDate 2024-03-10T09:30:00.000Z, but got %v", got.Totals.LastStudyDate)
	}
	if !reflect.DeepEqual(got.Sessions, []domain.StudySession{sess}) {
		t.Errorf("Expected sessions to hold only the new session, but got %v", got.Sessions)
	}
}

func TestAddStudySessionCategories(t *testing.T) {
	t.Run("verbs leave card totals alone", func(t *testing.T) {
		got := AddStudySession(NewState(), session("v", domain.Verbs, 1000, 10, 7))
		if got.Totals.StudiedCards != 0 || got.Totals.MasteredCards != 0 {
			t.Errorf("Expected card totals unchanged, but got %+v", got.Totals)
		}
		if got.Totals.StudiedVerbs != 10 || got.Totals.MasteredVerbs != 7 {
			t.Errorf("Expected verbs studied=10 mastered=7, but got %+v", got.Totals)
		}
	})

	t.Run("vocabulary leaves verb totals alone", func(t *testing.T) {
		for _, c := range domain.VocabularyCategories {
			got := AddStudySession(NewState(), session("c", c, 1000, 3, 2))
			if got.Totals.StudiedVerbs != 0 || got.Totals.MasteredVerbs != 0 {
				t.Errorf("Expected verb totals unchanged for %s, but got %+v", c, got.Totals)
			}
		}
	})
}

func TestAddStudySessionHistoryBound(t *testing.T) {
	state := NewState()
	for i := 1; i <= 60; i++ {
		state = AddStudySession(state, session(fmt.Sprintf("s%d", i), domain.Hotel, int64(i)*hour, 1, 1))
		want := min(i, domain.MaxSessions)
		if len(state.Sessions) != want {
			t.Fatalf("Expected %d sessions after %d calls, but got %d", want, i, len(state.Sessions))
		}
	}
	if state.Sessions[0].ID != "s60" {
		t.Errorf("Expected newest session first, but got %s", state.Sessions[0].ID)
	}
	if state.Sessions[domain.MaxSessions-1].ID != "s11" {
		t.Errorf("Expected oldest kept session s11, but got %s", state.Sessions[domain.MaxSessions-1].ID)
	}
	for i := 1; i < len(state.Sessions); i++ {
		if state.Sessions[i-1].Timestamp < state.Sessions[i].Timestamp {
			t.Fatalf("Expected newest-first order at index %d", i)
		}
	}
}

func TestAddStudySessionLeavesInputUntouched(t *testing.T) {
	before := AddStudySession(NewState(), session("a", domain.Doctor, 1000, 2, 1))
	snapshot := before.Clone()

	AddStudySession(before, session("b", domain.Verbs, 2000, 4, 4))

	if !reflect.DeepEqual(before, snapshot) {
		t.Errorf("Expected prior state to be unaffected, but got %+v", before)
	}
}

func TestCalculateStreak(t *testing.T) {
	base := time.Date(2024, 5, 1, 22, 0, 0, 0, time.UTC).UnixMilli()
	last := FormatISO(base)

	tests := []struct {
		name    string
		last    *string
		next    int64
		current int
		want    int
	}{
		{"no prior study", nil, base, 0, 1},
		{"no prior study ignores current", nil, base, 9, 1},
		{"one hour later", &last, base + hour, 4, 4},
		{"same bucket lifts zero to one", &last, base + hour, 0, 1},
		{"23 hours later", &last, base + 23*hour, 2, 2},
		{"earlier timestamp", &last, base - 5*hour, 3, 3},
		{"24h plus 1ms", &last, base + 24*hour + 1, 3, 4},
		{"two hours across midnight", &last, base + 2*hour, 1, 1},
		{"49 hours later", &last, base + 49*hour, 6, 1},
		{"a week later", &last, base + 7*24*hour, 6, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateStreak(tt.last, tt.next, tt.current); got != tt.want {
				t.Errorf("Expected streak %d, but got %d", tt.want, got)
			}
		})
	}

	t.Run("unparsable date", func(t *testing.T) {
		bad := "yesterday"
		if got := CalculateStreak(&bad, base, 5); got != 1 {
			t.Errorf("Expected streak 1, but got %d", got)
		}
	})
}

func TestStreakAcrossSessions(t *testing.T) {
	day := 24 * hour
	state := NewState()
	state = AddStudySession(state, session("1", domain.Airport, 0, 1, 1))
	state = AddStudySession(state, session("2", domain.Airport, day+1, 1, 1))
	state = AddStudySession(state, session("3", domain.Airport, 2*day+2, 1, 1))
	if state.Totals.Streak != 3 {
		t.Fatalf("Expected streak 3 after three consecutive days, but got %d", state.Totals.Streak)
	}
	state = AddStudySession(state, session("4", domain.Airport, 2*day+3*hour, 1, 1))
	if state.Totals.Streak != 3 {
		t.Fatalf("Expected streak to hold within a day, but got %d", state.Totals.Streak)
	}
	state = AddStudySession(state, session("5", domain.Airport, 5*day, 1, 1))
	if state.Totals.Streak != 1 {
		t.Errorf("Expected streak reset after a gap, but got %d", state.Totals.Streak)
	}
}

func TestUpdateCheckpoint(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("created on first answer", func(t *testing.T) {
		got := UpdateCheckpoint(NewState(), "greetings-ola", true, now)
		cp, ok := got.Checkpoints["greetings-ola"]
		if !ok {
			t.Fatal("Expected checkpoint to be created")
		}
		if cp.CardID != "greetings-ola" || cp.Confidence != 1 || cp.CorrectStreak != 1 || cp.IncorrectStreak != 0 {
			t.Errorf("Unexpected checkpoint %+v", cp)
		}
		if cp.LastStudiedAt == nil || *cp.LastStudiedAt != now.UnixMilli() {
			t.Errorf("Expected lastStudiedAt %d, but got %v", now.UnixMilli(), cp.LastStudiedAt)
		}
	})

	t.Run("confidence clamps at two", func(t *testing.T) {
		state := NewState()
		for i := 0; i < 10; i++ {
			state = UpdateCheckpoint(state, "x", true, now)
		}
		cp := state.Checkpoints["x"]
		if cp.Confidence != 2 {
			t.Errorf("Expected confidence 2, but got %d", cp.Confidence)
		}
		if cp.CorrectStreak != 10 {
			t.Errorf("Expected correct streak 10, but got %d", cp.CorrectStreak)
		}
	})

	t.Run("incorrect clamps", func(t *testing.T) {
		state := UpdateCheckpoint(NewState(), "x", true, now)
		for i := 0; i < 10; i++ {
			state = UpdateCheckpoint(state, "x", false, now)
			cp := state.Checkpoints["x"]
			if cp.IncorrectStreak > 3 {
				t.Fatalf("Expected incorrect streak <= 3, but got %d", cp.IncorrectStreak)
			}
			if cp.Confidence < 0 {
				t.Fatalf("Expected confidence >= 0, but got %d", cp.Confidence)
			}
		}
		cp := state.Checkpoints["x"]
		if cp.IncorrectStreak != 3 || cp.Confidence != 0 || cp.CorrectStreak != 0 {
			t.Errorf("Unexpected checkpoint %+v", cp)
		}
	})

	t.Run("correct resets incorrect streak", func(t *testing.T) {
		state := UpdateCheckpoint(NewState(), "x", false, now)
		state = UpdateCheckpoint(state, "x", false, now)
		state = UpdateCheckpoint(state, "x", true, now)
		cp := state.Checkpoints["x"]
		if cp.IncorrectStreak != 0 || cp.CorrectStreak != 1 || cp.Confidence != 1 {
			t.Errorf("Unexpected checkpoint %+v", cp)
		}
	})

	t.Run("other fields untouched", func(t *testing.T) {
		state := AddStudySession(NewState(), session("s", domain.Pharmacy, 1000, 3, 3))
		state = UpdateCheckpoint(state, "a", true, now)
		before := state.Clone()

		got := UpdateCheckpoint(state, "b", false, now)

		if !reflect.DeepEqual(got.Checkpoints["a"], before.Checkpoints["a"]) {
			t.Errorf("Expected checkpoint a unchanged, but got %+v", got.Checkpoints["a"])
		}
		if !reflect.DeepEqual(got.Totals, before.Totals) || !reflect.DeepEqual(got.Sessions, before.Sessions) {
			t.Error("Expected totals and sessions unchanged")
		}
		if _, ok := state.Checkpoints["b"]; ok {
			t.Error("Expected prior state checkpoints to be unaffected")
		}
	})
}

func TestMasteryPercent(t *testing.T) {
	tests := []struct {
		mastered, studied, want int
	}{
		{0, 0, 0},
		{4, 5, 80},
		{1, 3, 33},
		{2, 3, 67},
		{5, 5, 100},
	}
	for _, tt := range tests {
		if got := MasteryPercent(tt.mastered, tt.studied); got != tt.want {
			t.Errorf("MasteryPercent(%d, %d): expected %d, but got %d", tt.mastered, tt.studied, tt.want, got)
		}
	}
}

func TestSummarize(t *testing.T) {
	state := NewState()
	for i := 0; i < 7; i++ {
		state = AddStudySession(state, session(fmt.Sprintf("s%d", i), domain.Verbs, int64(i)*hour, 4, 3))
	}
	state = UpdateCheckpoint(state, "a", true, time.Now())
	state = UpdateCheckpoint(state, "a", true, time.Now())
	state = UpdateCheckpoint(state, "b", true, time.Now())

	s := Summarize(state)
	if s.VerbMastery != 75 || s.CardMastery != 0 {
		t.Errorf("Expected verb mastery 75 and card mastery 0, but got %d and %d", s.VerbMastery, s.CardMastery)
	}
	if len(s.Recent) != 5 || s.Recent[0].ID != "s6" {
		t.Errorf("Expected the five newest sessions, but got %v", s.Recent)
	}
	if s.TrackedItems != 2 || s.ConfidentItems != 1 {
		t.Errorf("Expected 2 tracked and 1 confident item, but got %d and %d", s.TrackedItems, s.ConfidentItems)
	}
}
