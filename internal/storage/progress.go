package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/fluentdeck/internal/domain"
)

// StorageKey is the slot holding the serialized progress state.
const StorageKey = "flashcards-progress"

// Outcome classifies the result of a persistence operation.
type Outcome int

const (
	OutcomeOK          Outcome = iota
	OutcomeUnavailable         // no durable storage configured
	OutcomeMissing             // nothing stored yet
	OutcomeCorrupt             // stored content could not be decoded
	OutcomeFailed              // the storage layer returned an error
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeUnavailable:
		return "unavailable"
	case OutcomeMissing:
		return "missing"
	case OutcomeCorrupt:
		return "corrupt"
	case OutcomeFailed:
		return "failed"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Result is the internal outcome of a Load, Save or Clear. The public
// methods log failures and drop them.
type Result struct {
	Outcome Outcome
	Err     error
}

// ErrCorrupt marks stored content that does not match the progress layout.
var ErrCorrupt = errors.New("storage: corrupt progress data")

// storedState mirrors domain.ProgressState with the shape checks applied on
// read.
type storedState struct {
	Totals      *domain.ProgressTotals            `json:"totals" validate:"required"`
	Checkpoints map[string]domain.StudyCheckpoint `json:"checkpoints" validate:"required,dive"`
	Sessions    []domain.StudySession             `json:"sessions" validate:"required,max=50,dive"`
}

// ProgressRepository loads and saves the progress blob in a single slot. A
// repository without a slot behaves as if durable storage is unavailable:
// every operation is a no-op.
type ProgressRepository struct {
	slot     Slot
	log      *slog.Logger
	validate *validator.Validate
}

// NewProgressRepository returns a repository backed by slot. slot may be nil.
func NewProgressRepository(slot Slot, logger *slog.Logger) *ProgressRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressRepository{
		slot:     slot,
		log:      logger,
		validate: validator.New(),
	}
}

// Available reports whether the repository has durable storage.
func (r *ProgressRepository) Available() bool {
	return r.slot != nil
}

// Load returns the persisted state, or nil when there is none or it cannot be
// read.
func (r *ProgressRepository) Load(ctx context.Context) *domain.ProgressState {
	state, res := r.load(ctx)
	switch res.Outcome {
	case OutcomeCorrupt:
		r.log.Warn("Discarding unreadable progress data", "key", StorageKey, "error", res.Err)
	case OutcomeFailed:
		r.log.Warn("Failed to read progress from storage", "key", StorageKey, "error", res.Err)
	}
	return state
}

// Save persists state. Failures are logged and otherwise ignored.
func (r *ProgressRepository) Save(ctx context.Context, state domain.ProgressState) {
	if res := r.save(ctx, state); res.Outcome == OutcomeFailed {
		r.log.Warn("Failed to save progress state", "key", StorageKey, "error", res.Err)
	}
}

// Clear removes the persisted state. Failures are logged and otherwise
// ignored.
func (r *ProgressRepository) Clear(ctx context.Context) {
	if res := r.clear(ctx); res.Outcome == OutcomeFailed {
		r.log.Warn("Failed to clear progress state", "key", StorageKey, "error", res.Err)
	}
}

func (r *ProgressRepository) load(ctx context.Context) (*domain.ProgressState, Result) {
	if r.slot == nil {
		return nil, Result{Outcome: OutcomeUnavailable}
	}
	raw, ok, err := r.slot.Get(ctx, StorageKey)
	if err != nil {
		return nil, Result{Outcome: OutcomeFailed, Err: err}
	}
	if !ok || raw == "" {
		return nil, Result{Outcome: OutcomeMissing}
	}
	state, err := r.decode(raw)
	if err != nil {
		return nil, Result{Outcome: OutcomeCorrupt, Err: err}
	}
	return state, Result{Outcome: OutcomeOK}
}

func (r *ProgressRepository) save(ctx context.Context, state domain.ProgressState) Result {
	if r.slot == nil {
		return Result{Outcome: OutcomeUnavailable}
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("failed to encode progress: %w", err)}
	}
	if err := r.slot.Put(ctx, StorageKey, string(raw)); err != nil {
		return Result{Outcome: OutcomeFailed, Err: err}
	}
	return Result{Outcome: OutcomeOK}
}

func (r *ProgressRepository) clear(ctx context.Context) Result {
	if r.slot == nil {
		return Result{Outcome: OutcomeUnavailable}
	}
	if err := r.slot.Delete(ctx, StorageKey); err != nil {
		return Result{Outcome: OutcomeFailed, Err: err}
	}
	return Result{Outcome: OutcomeOK}
}

func (r *ProgressRepository) decode(raw string) (*domain.ProgressState, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()

	var stored storedState
	if err := dec.Decode(&stored); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after document", ErrCorrupt)
	}
	if err := r.validate.Struct(stored); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	return &domain.ProgressState{
		Totals:      *stored.Totals,
		Checkpoints: stored.Checkpoints,
		Sessions:    stored.Sessions,
	}, nil
}
