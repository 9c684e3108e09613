// Package store owns the live progress state of a running instance and
// writes every change through to the persistence layer.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/conorfennell/fluentdeck/internal/domain"
	"github.com/conorfennell/fluentdeck/internal/progress"
)

// Persister is the durable copy of the progress state.
type Persister interface {
	Load(ctx context.Context) *domain.ProgressState
	Save(ctx context.Context, state domain.ProgressState)
	Clear(ctx context.Context)
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for session timestamps and
// checkpoint updates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the session identifier generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.log = logger }
}

// Store serializes all reads and mutations of the progress state. Each
// mutation is applied, persisted and published before the next one starts.
type Store struct {
	mu          sync.Mutex
	state       domain.ProgressState
	hydrated    bool
	persister   Persister
	subscribers map[int]func(domain.ProgressState)
	nextSub     int

	now   func() time.Time
	newID func() string
	log   *slog.Logger
}

// New returns a store holding a fresh initial state. Call Hydrate before use.
func New(persister Persister, opts ...Option) *Store {
	s := &Store{
		state:       progress.NewState(),
		persister:   persister,
		subscribers: map[int]func(domain.ProgressState){},
		now:         time.Now,
		log:         slog.Default(),
	}
	s.newID = s.sessionID
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate loads the persisted state once. Later calls do nothing.
func (s *Store) Hydrate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated {
		return
	}
	if stored := s.persister.Load(ctx); stored != nil {
		s.state = *stored
		s.log.Info("Progress restored", "sessions", len(stored.Sessions), "checkpoints", len(stored.Checkpoints))
	} else {
		s.state = progress.NewState()
		s.log.Info("Starting with fresh progress")
	}
	s.hydrated = true
}

// Hydrated reports whether Hydrate or Reset has run.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// State returns a copy of the current state.
func (s *Store) State() domain.ProgressState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// RecordSession folds a completed drill run into the state and returns the
// session that was recorded.
func (s *Store) RecordSession(ctx context.Context, category domain.Category, total, correct, incorrect, durationSeconds int) domain.StudySession {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := domain.StudySession{
		ID:              s.newID(),
		Timestamp:       s.now().UnixMilli(),
		Category:        category,
		Total:           total,
		Correct:         correct,
		Incorrect:       incorrect,
		DurationSeconds: durationSeconds,
	}
	s.commit(ctx, progress.AddStudySession(s.state, session))
	s.log.Debug("Session recorded", "id", session.ID, "category", category, "total", total, "correct", correct)
	return session
}

// MarkCard folds one answer for itemID into its checkpoint.
func (s *Store) MarkCard(ctx context.Context, itemID string, correct bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commit(ctx, progress.UpdateCheckpoint(s.state, itemID, correct, s.now()))
}

// Reset discards all progress, both in memory and in storage. The store
// counts as hydrated afterwards.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.persister.Clear(ctx)
	s.state = progress.NewState()
	s.hydrated = true
	s.publish()
	s.log.Info("Progress reset")
}

// Subscribe registers fn to receive every new state. fn runs while the store
// is locked and must not call back into it. The returned function removes
// the subscription.
func (s *Store) Subscribe(fn func(domain.ProgressState)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store) commit(ctx context.Context, next domain.ProgressState) {
	s.state = next
	s.persister.Save(ctx, next)
	s.publish()
}

func (s *Store) publish() {
	for _, fn := range s.subscribers {
		fn(s.state.Clone())
	}
}

func (s *Store) sessionID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Sprintf("session-%d", s.now().UnixMilli())
	}
	return id.String()
}
