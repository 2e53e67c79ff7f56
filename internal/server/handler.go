// Package server exposes learner sessions over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/at-ishikawa/pathtutor/internal/leaderboard"
	"github.com/at-ishikawa/pathtutor/internal/lesson"
	"github.com/at-ishikawa/pathtutor/internal/outbox"
	"github.com/at-ishikawa/pathtutor/internal/progression"
	"github.com/at-ishikawa/pathtutor/internal/report"
	"github.com/at-ishikawa/pathtutor/internal/session"
	"github.com/at-ishikawa/pathtutor/internal/tutor"
	"github.com/at-ishikawa/pathtutor/internal/unlock"
)

// Opener starts tutors for learners.
type Opener interface {
	Open(ctx context.Context, learnerID, classID string, role session.Role) (*tutor.Tutor, error)
}

type LeaderboardReader interface {
	Fetch(ctx context.Context, classID string) ([]leaderboard.Entry, error)
}

var errUnknownSession = errors.New("unknown session")

// SessionHandler keeps the open tutors of this process, one per session id.
type SessionHandler struct {
	opener      Opener
	leaderboard LeaderboardReader
	validator   *requestValidator
	metrics     *Metrics
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*tutor.Tutor
}

// NewSessionHandler creates a handler. leaderboardReader may be nil.
func NewSessionHandler(opener Opener, leaderboardReader LeaderboardReader, metrics *Metrics) (*SessionHandler, error) {
	v, err := newRequestValidator()
	if err != nil {
		return nil, fmt.Errorf("newRequestValidator() > %w", err)
	}
	return &SessionHandler{
		opener:      opener,
		leaderboard: leaderboardReader,
		validator:   v,
		metrics:     metrics,
		now:         time.Now,
		sessions:    make(map[string]*tutor.Tutor),
	}, nil
}

// Routes registers the API on mux.
func (h *SessionHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/sessions", h.StartSession)
	mux.HandleFunc("GET /v1/sessions/{id}", h.GetSession)
	mux.HandleFunc("DELETE /v1/sessions/{id}", h.CloseSession)
	mux.HandleFunc("POST /v1/sessions/{id}/lessons/{lesson}", h.SelectLesson)
	mux.HandleFunc("GET /v1/sessions/{id}/question", h.GetQuestion)
	mux.HandleFunc("POST /v1/sessions/{id}/answers", h.SubmitAnswer)
	mux.HandleFunc("POST /v1/sessions/{id}/hints", h.ShowHints)
	mux.HandleFunc("POST /v1/sessions/{id}/solution", h.RevealSolution)
	mux.HandleFunc("POST /v1/sessions/{id}/moves", h.Move)
	mux.HandleFunc("POST /v1/sessions/{id}/unlock/retry", h.RetryUnlock)
	mux.HandleFunc("GET /v1/sessions/{id}/summary", h.GetSummary)
	mux.HandleFunc("GET /v1/leaderboard", h.GetLeaderboard)
}

// Flushers returns the open tutors so queued answers can be replayed.
func (h *SessionHandler) Flushers() []outbox.Flusher {
	h.mu.Lock()
	defer h.mu.Unlock()
	flushers := make([]outbox.Flusher, 0, len(h.sessions))
	for _, t := range h.sessions {
		flushers = append(flushers, t)
	}
	return flushers
}

// Shutdown persists and closes every open session.
func (h *SessionHandler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]*tutor.Tutor)
	h.mu.Unlock()

	var errs []error
	for id, t := range sessions {
		if err := t.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close session %s > %w", id, err))
		}
	}
	h.metrics.OpenSessions.Set(0)
	return errors.Join(errs...)
}

type startSessionRequest struct {
	LearnerID string `json:"learner_id" validate:"required"`
	ClassID   string `json:"class_id" validate:"required"`
	Role      string `json:"role" validate:"omitempty,oneof=student teacher parent"`
}

type sessionResponse struct {
	SessionID        string                 `json:"session_id"`
	LearnerID        string                 `json:"learner_id"`
	ClassID          string                 `json:"class_id"`
	Role             session.Role           `json:"role"`
	Rating           int                    `json:"rating"`
	SelectedLessonID string                 `json:"selected_lesson_id,omitempty"`
	PendingUnlock    string                 `json:"pending_unlock,omitempty"`
	Stale            bool                   `json:"stale"`
	Modules          []lesson.Module        `json:"modules"`
	Progress         *progression.StateView `json:"progress,omitempty"`
}

func newSessionResponse(t *tutor.Tutor) sessionResponse {
	sc := t.Session()
	resp := sessionResponse{
		SessionID:        sc.ID,
		LearnerID:        sc.LearnerID,
		ClassID:          sc.ClassID,
		Role:             sc.Role,
		Rating:           sc.Rating,
		SelectedLessonID: sc.SelectedLessonID,
		PendingUnlock:    t.PendingUnlock(),
		Stale:            t.Snapshot().Stale,
		Modules:          t.Modules(),
	}
	if viewer, err := t.Viewer(); err == nil {
		view := viewer.Snapshot()
		resp.Progress = &view
	}
	return resp
}

func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !h.decode(w, r, &req) {
		return
	}
	role := session.RoleStudent
	if req.Role != "" {
		role = session.Role(req.Role)
	}

	t, err := h.opener.Open(r.Context(), req.LearnerID, req.ClassID, role)
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Errorf("open session: %w", err))
		return
	}

	h.mu.Lock()
	h.sessions[t.Session().ID] = t
	h.metrics.OpenSessions.Set(float64(len(h.sessions)))
	h.mu.Unlock()

	slog.Default().Info("session started", "session", t.Session().ID, "learner", req.LearnerID, "class", req.ClassID, "role", role)
	writeJSON(w, http.StatusCreated, newSessionResponse(t))
}

func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*tutor.Tutor, bool) {
	id := r.PathValue("id")
	h.mu.Lock()
	t, ok := h.sessions[id]
	h.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", errUnknownSession, id))
		return nil, false
	}
	return t, true
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	t, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(t))
}

func (h *SessionHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	t, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.mu.Lock()
	delete(h.sessions, r.PathValue("id"))
	h.metrics.OpenSessions.Set(float64(len(h.sessions)))
	h.mu.Unlock()

	if err := t.Close(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) SelectLesson(w http.ResponseWriter, r *http.Request) {
	t, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := t.SelectLesson(r.PathValue("lesson")); err != nil {
		writeTutorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(t))
}

type questionResponse struct {
	LessonID          string      `json:"lesson_id"`
	QuestionID        string      `json:"question_id"`
	Content           string      `json:"content"`
	Difficulty        lesson.Tier `json:"difficulty"`
	HintCount         int         `json:"hint_count"`
	SolutionAvailable bool        `json:"solution_available"`
	PathIndex         int         `json:"path_index"`
	PathLength        int         `json:"path_length"`
}

func (h *SessionHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	t, ok := h.lookup(w, r)
	if !ok {
		return
	}
	q, tier, err := t.CurrentQuestion()
	if err != nil {
		writeTutorError(w, err)
		return
	}
	viewer, err := t.Viewer()
	if err != nil {
		writeTutorError(w, err)
		return
	}
	view := viewer.Snapshot()
	writeJSON(w, http.StatusOK, questionResponse{
		LessonID:          view.LessonID,
		QuestionID:        q.ID,
		Content:           q.Content,
		Difficulty:        tier,
		HintCount:         len(q.Hints),
		SolutionAvailable: t.SolutionAvailable(),
		PathIndex:         view.PathIndex,
		PathLength:        view.PathLength,
	})
}

type submitAnswerRequest struct {
	Answer string `json:"answer" validate:"required"`
	// TimeTaken is in seconds; zero lets the server measure it.
	TimeTaken int `json:"time_taken" validate:"gte=0"`
}

type submitAnswerResponse struct {
	tutor.Outcome
	UnlockError string `json:"unlock_error,omitempty"`
}

func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	t, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req submitAnswerRequest
	if !h.decode(w, r, &req) {
		return
	}

	outcome, err := t.Submit(r.Context(), req.Answer, time.Duration(req.TimeTaken)*time.Second)
	if err != nil {
		writeTutorError(w, err)
		return
	}
	h.metrics.AnswerCounter.WithLabelValues(strconv.FormatBool(outcome.Correct), outcome.Directive.String()).Inc()

	resp := submitAnswerResponse{Outcome: outcome}
	if outcome.LessonComplete {
		if outcome.UnlockErr != nil {
			resp.UnlockError = outcome.UnlockErr.Error()
			h.metrics.UnlockCounter.WithLabelValues("failed").Inc()
		} else {
			h.metrics.UnlockCounter.WithLabelValues("ok").Inc()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) ShowHints(w http.ResponseWriter, r *http.Request) {
	t, ok := h.lookup(w, r)
	if !ok {
		return
	}
	hints, err := t.ShowHint()
	if err != nil {
		writeTutorError(w, err)
		return
	}
	if hints == nil {
		hints = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"hints": hints})
}

func (h *SessionHandler) RevealSolution(w http.ResponseWriter, r *http.Request) {
	t, ok := h.lookup(w, r)
	if !ok {
		return
	}
	solution, err := t.RevealSolution(r.Context())
	if err != nil {
		writeTutorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"solution": solution})
}

type moveRequest struct {
	Delta int `json:"delta" validate:"required"`
}

func (h *SessionHandler) Move(w http.ResponseWriter, r *http.Request) {
	t, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req moveRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := t.Move(req.Delta); err != nil {
		writeTutorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(t))
}

func (h *SessionHandler) RetryUnlock(w http.ResponseWriter, r *http.Request) {
	t, ok := h.lookup(w, r)
	if !ok {
		return
	}
	result, err := t.RetryUnlock(r.Context())
	if err != nil {
		if errors.Is(err, unlock.ErrUnlockFailed) {
			h.metrics.UnlockCounter.WithLabelValues("failed").Inc()
		}
		writeTutorError(w, err)
		return
	}
	h.metrics.UnlockCounter.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, result)
}

func (h *SessionHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	t, ok := h.lookup(w, r)
	if !ok {
		return
	}
	sc := t.Session()
	in := report.Input{
		LearnerID: sc.LearnerID,
		ClassID:   sc.ClassID,
		Snapshot:  t.Snapshot(),
		Now:       h.now().UTC(),
	}
	if !sc.Role.IsObserver() {
		in.Rating = sc.Rating
	}
	if observer, err := t.Observe(); err == nil {
		view := observer.Snapshot()
		in.Current = &view
	}
	writeJSON(w, http.StatusOK, report.Summarize(in))
}

func (h *SessionHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if h.leaderboard == nil {
		writeError(w, http.StatusNotFound, errors.New("leaderboard is not configured"))
		return
	}
	classID := r.URL.Query().Get("class_id")
	if classID == "" {
		writeError(w, http.StatusBadRequest, errors.New("class_id is a required field"))
		return
	}
	entries, err := h.leaderboard.Fetch(r.Context(), classID)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "leaderboard": entries})
}

func (h *SessionHandler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}
