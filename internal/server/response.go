package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/at-ishikawa/pathtutor/internal/progression"
	"github.com/at-ishikawa/pathtutor/internal/tutor"
	"github.com/at-ishikawa/pathtutor/internal/unlock"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Default().Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		slog.Default().Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Success: false, Message: err.Error()})
}

// statusOf maps tutor errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, tutor.ErrReadOnly),
		errors.Is(err, tutor.ErrLessonLocked):
		return http.StatusForbidden
	case errors.Is(err, tutor.ErrUnknownLesson),
		errors.Is(err, tutor.ErrNoLesson),
		errors.Is(err, progression.ErrNoQuestion):
		return http.StatusNotFound
	case errors.Is(err, progression.ErrEmptyAnswer):
		return http.StatusBadRequest
	case errors.Is(err, tutor.ErrBusy),
		errors.Is(err, tutor.ErrNothingToRetry),
		errors.Is(err, progression.ErrLessonComplete),
		errors.Is(err, progression.ErrSolutionUnavailable):
		return http.StatusConflict
	case errors.Is(err, unlock.ErrUnlockFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeTutorError(w http.ResponseWriter, err error) {
	writeError(w, statusOf(err), err)
}
