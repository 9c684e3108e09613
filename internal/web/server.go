// Package web exposes the study tracker to UI clients as a JSON API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/fluentdeck/internal/deck"
	"github.com/conorfennell/fluentdeck/internal/domain"
	"github.com/conorfennell/fluentdeck/internal/drill"
	"github.com/conorfennell/fluentdeck/internal/progress"
)

// ProgressStore is the subset of store.Store the server drives.
type ProgressStore interface {
	State() domain.ProgressState
	RecordSession(ctx context.Context, category domain.Category, total, correct, incorrect, durationSeconds int) domain.StudySession
	MarkCard(ctx context.Context, itemID string, correct bool)
	Reset(ctx context.Context)
}

// ReloadFunc rebuilds the deck library, typically after syncing sources.
type ReloadFunc func(ctx context.Context) (*deck.Library, error)

// Options configures a Server.
type Options struct {
	CardCount  int
	VerbRounds int
	Reload     ReloadFunc
	Logger     *slog.Logger
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	store    ProgressStore
	router   *http.ServeMux
	validate *validator.Validate
	log      *slog.Logger

	cardCount  int
	verbRounds int
	reload     ReloadFunc

	mu      sync.RWMutex
	library *deck.Library
}

// NewServer creates and configures a new server.
func NewServer(st ProgressStore, lib *deck.Library, opts Options) *Server {
	if lib == nil {
		lib = deck.NewLibrary(nil, nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:      st,
		router:     http.NewServeMux(),
		validate:   validator.New(),
		log:        logger,
		cardCount:  opts.CardCount,
		verbRounds: opts.VerbRounds,
		reload:     opts.Reload,
		library:    lib,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.router.HandleFunc("GET /api/progress", s.handleGetProgress())
	s.router.HandleFunc("POST /api/sessions", s.handlePostSession())
	s.router.HandleFunc("POST /api/cards/{id}/mark", s.handleMarkCard())
	s.router.HandleFunc("POST /api/reset", s.handleReset())

	s.router.HandleFunc("GET /api/decks", s.handleGetDecks())
	s.router.HandleFunc("GET /api/decks/{category}/round", s.handleGetRound())
	s.router.HandleFunc("GET /api/verbs/question", s.handleGetVerbQuestion())
	s.router.HandleFunc("POST /api/verbs/check", s.handleCheckVerb())
	s.router.HandleFunc("POST /api/sync", s.handlePostSync())
}

func (s *Server) lib() *deck.Library {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.library
}

type progressResponse struct {
	State   domain.ProgressState `json:"state"`
	Summary progress.Summary     `json:"summary"`
}

// handleGetProgress returns the full state with the dashboard summary.
func (s *Server) handleGetProgress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := s.store.State()
		s.writeJSON(w, http.StatusOK, progressResponse{State: state, Summary: progress.Summarize(state)})
	}
}

type sessionRequest struct {
	Category        domain.Category `json:"category" validate:"required"`
	Total           int             `json:"total" validate:"min=0"`
	Correct         int             `json:"correct" validate:"min=0"`
	Incorrect       int             `json:"incorrect" validate:"min=0"`
	DurationSeconds int             `json:"durationSeconds" validate:"min=1"`
}

// handlePostSession records a completed run.
func (s *Server) handlePostSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sessionRequest
		if !s.decode(w, r, &req) {
			return
		}
		if !req.Category.Valid() {
			s.writeError(w, http.StatusBadRequest, "unknown category: "+string(req.Category))
			return
		}
		if req.Correct+req.Incorrect != req.Total {
			s.writeError(w, http.StatusBadRequest, "total must equal correct + incorrect")
			return
		}

		session := s.store.RecordSession(r.Context(), req.Category, req.Total, req.Correct, req.Incorrect, req.DurationSeconds)
		s.writeJSON(w, http.StatusCreated, session)
	}
}

type markRequest struct {
	Correct *bool `json:"correct" validate:"required"`
}

// handleMarkCard folds one answer into the item's checkpoint.
func (s *Server) handleMarkCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		var req markRequest
		if !s.decode(w, r, &req) {
			return
		}

		s.store.MarkCard(r.Context(), id, *req.Correct)
		s.writeJSON(w, http.StatusOK, s.store.State().Checkpoints[id])
	}
}

// handleReset discards all progress.
func (s *Server) handleReset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.store.Reset(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}
}

type decksResponse struct {
	Categories []deck.CategoryInfo `json:"categories"`
	Verbs      int                 `json:"verbs"`
	CardCount  int                 `json:"cardCount"`
	VerbRounds int                 `json:"verbRounds"`
}

func (s *Server) decksResponse(lib *deck.Library) decksResponse {
	cats := lib.Categories()
	if cats == nil {
		cats = []deck.CategoryInfo{}
	}
	return decksResponse{
		Categories: cats,
		Verbs:      len(lib.Verbs()),
		CardCount:  s.cardCount,
		VerbRounds: s.verbRounds,
	}
}

// handleGetDecks lists the loaded decks.
func (s *Server) handleGetDecks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, s.decksResponse(s.lib()))
	}
}

// handleGetRound returns a shuffled round of cards for one category.
func (s *Server) handleGetRound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := domain.Category(r.PathValue("category"))
		cards, err := s.lib().Cards(category)
		if err != nil {
			if errors.Is(err, deck.ErrUnknownCategory) {
				http.NotFound(w, r)
				return
			}
			s.log.Error("Error getting deck", "category", category, "error", err)
			s.writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		count := s.cardCount
		if raw := r.URL.Query().Get("count"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				s.writeError(w, http.StatusBadRequest, "invalid count")
				return
			}
			count = n
		}
		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"category": category,
			"cards":    drill.CardRound(cards, count),
		})
	}
}

// handleGetVerbQuestion returns one random conjugation prompt.
func (s *Server) handleGetVerbQuestion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := drill.NewVerbQuestion(s.lib().Verbs())
		if err != nil {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, q)
	}
}

type verbCheckRequest struct {
	Infinitive string        `json:"infinitive" validate:"required"`
	Tense      domain.Tense  `json:"tense" validate:"oneof=present preterite imperfect future"`
	Person     domain.Person `json:"person" validate:"oneof=eu tu voce nos vos eles"`
	Answer     string        `json:"answer"`
}

type verbCheckResponse struct {
	Correct  bool   `json:"correct"`
	Expected string `json:"expected"`
}

// handleCheckVerb grades a conjugation answer.
func (s *Server) handleCheckVerb() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verbCheckRequest
		if !s.decode(w, r, &req) {
			return
		}
		for _, v := range s.lib().Verbs() {
			if v.Infinitive != req.Infinitive {
				continue
			}
			expected, _ := v.Conjugate(req.Tense, req.Person)
			s.writeJSON(w, http.StatusOK, verbCheckResponse{
				Correct:  drill.CheckAnswer(req.Answer, expected),
				Expected: expected,
			})
			return
		}
		s.writeError(w, http.StatusNotFound, "unknown verb: "+req.Infinitive)
	}
}

// handlePostSync re-syncs deck sources and swaps in the new library.
func (s *Server) handlePostSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.reload == nil {
			s.writeError(w, http.StatusNotImplemented, "deck reload is not configured")
			return
		}
		lib, err := s.reload(r.Context())
		if err != nil && lib == nil {
			s.log.Error("Error reloading decks", "error", err)
			s.writeError(w, http.StatusInternalServerError, "failed to reload decks")
			return
		}
		if err != nil {
			s.log.Warn("Decks reloaded with errors", "error", err)
		}

		s.mu.Lock()
		s.library = lib
		s.mu.Unlock()

		s.writeJSON(w, http.StatusOK, s.decksResponse(lib))
	}
}

// decode reads a JSON body into dst and validates it. It writes the error
// response itself and reports false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("Failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
