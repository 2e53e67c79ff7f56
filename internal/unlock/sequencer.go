// Package unlock completes lessons against the progress store and re-derives
// which module the learner should see next.
package unlock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/at-ishikawa/pathtutor/internal/lesson"
	"github.com/at-ishikawa/pathtutor/internal/progress"
)

// ErrUnlockFailed means the store did not confirm the completion. Local state is untouched
// and the call can be repeated.
var ErrUnlockFailed = errors.New("lesson unlock failed")

// ErrStaleSnapshot is returned when the refetch after a completion could only be
// served from the local cache.
var ErrStaleSnapshot = errors.New("progress snapshot after completion is stale")

type Result struct {
	Message         string          `json:"message"`
	CompletedLesson string          `json:"completed_lesson"`
	UnlockedLesson  string          `json:"unlocked_lesson,omitempty"`
	Modules         []lesson.Module `json:"modules"`

	// Selected is the module to continue with, empty when nothing was chosen.
	Selected string          `json:"selected,omitempty"`
	Snapshot lesson.Snapshot `json:"-"`
}

type Sequencer struct {
	client progress.Client
}

func NewSequencer(client progress.Client) *Sequencer {
	return &Sequencer{client: client}
}

// CompleteLesson marks the lesson complete in the store and reloads module flags.
// The store is the source of truth for unlocks, so modules are always refetched.
func (s *Sequencer) CompleteLesson(ctx context.Context, learnerID, classID, lessonID string, autoAdvance bool) (Result, error) {
	completed, err := s.client.CompleteLesson(ctx, learnerID, classID, lessonID)
	if err != nil {
		return Result{}, fmt.Errorf("%w: client.CompleteLesson(%s) > %w", ErrUnlockFailed, lessonID, err)
	}

	snapshot, err := s.client.FetchProgress(ctx, learnerID, classID)
	if err != nil {
		return Result{}, fmt.Errorf("%w: client.FetchProgress > %w", ErrUnlockFailed, err)
	}
	// A cached snapshot predates the completion and would select the finished lesson again.
	if snapshot.Stale {
		return Result{}, fmt.Errorf("%w: %w", ErrUnlockFailed, ErrStaleSnapshot)
	}

	modules := lesson.Modules(snapshot)
	result := Result{
		Message:         completed.Message,
		CompletedLesson: lessonID,
		UnlockedLesson:  completed.UnlockedLesson,
		Modules:         modules,
		Snapshot:        snapshot,
	}
	if completed.CompletedLesson != "" {
		result.CompletedLesson = completed.CompletedLesson
	}
	if autoAdvance {
		if next, ok := lesson.FirstAvailable(modules); ok {
			result.Selected = next.ID
		}
	}

	slog.Default().Info("lesson completed",
		"learner", learnerID,
		"class", classID,
		"lesson", result.CompletedLesson,
		"unlocked", result.UnlockedLesson,
		"selected", result.Selected,
	)
	return result, nil
}
