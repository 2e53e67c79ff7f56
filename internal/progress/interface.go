package progress

import (
	"context"

	"github.com/at-ishikawa/pathtutor/internal/lesson"
)

//go:generate mockgen -source=interface.go -destination=../mocks/progress/mock_client.go -package=mock_progress

// Client talks to the external progress store, the source of truth for lesson flags.
type Client interface {
	FetchProgress(ctx context.Context, learnerID, classID string) (lesson.Snapshot, error)
	SubmitAnswer(ctx context.Context, submission AnswerSubmission) error
	// CompleteLesson is idempotent on the server side.
	CompleteLesson(ctx context.Context, learnerID, classID, lessonID string) (CompleteResult, error)
}

// AnswerSubmission is sent for every graded answer and for every solution reveal.
type AnswerSubmission struct {
	LearnerID  string `json:"userid" yaml:"userid"`
	ClassID    string `json:"class_id" yaml:"class_id"`
	LessonID   string `json:"lesson_id" yaml:"lesson_id"`
	QuestionID string `json:"question_id" yaml:"question_id"`
	Correct    bool   `json:"correct" yaml:"correct"`
	// TimeTaken is in seconds.
	TimeTaken int `json:"time_taken" yaml:"time_taken"`
}

type CompleteResult struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	CompletedLesson string `json:"completed_lesson"`
	UnlockedLesson  string `json:"unlocked_lesson,omitempty"`
}
