package progression

import (
	"errors"
	"strings"

	"github.com/at-ishikawa/pathtutor/internal/lesson"
)

var (
	ErrEmptyAnswer         = errors.New("answer must not be empty")
	ErrSolutionUnavailable = errors.New("solution is not available yet")
)

// Attempt tracks the learner's interaction with the current question.
type Attempt struct {
	QuestionID    string
	WrongAttempts int
	UsedSolution  bool
	HintsViewed   int
}

func NewAttempt(questionID string) *Attempt {
	return &Attempt{QuestionID: questionID}
}

// Check grades an answer and returns the event for the state machine.
// The event carries the wrong attempts made before this answer.
func (a *Attempt) Check(q lesson.Question, answer string) (AnswerEvent, error) {
	if strings.TrimSpace(answer) == "" {
		return AnswerEvent{}, ErrEmptyAnswer
	}
	correct := q.IsCorrectAnswer(answer)
	event := AnswerEvent{
		Correct:       correct,
		HintsUsed:     a.HintsUsed(q),
		UsedSolution:  a.UsedSolution,
		WrongAttempts: a.WrongAttempts,
	}
	if !correct {
		a.WrongAttempts++
	}
	return event, nil
}

// UnlockedHints returns one more hint per wrong attempt.
func (a *Attempt) UnlockedHints(q lesson.Question) []string {
	n := a.WrongAttempts
	if n > len(q.Hints) {
		n = len(q.Hints)
	}
	return q.Hints[:n]
}

// ViewHints marks the unlocked hints as seen and returns them.
func (a *Attempt) ViewHints(q lesson.Question) []string {
	hints := a.UnlockedHints(q)
	if len(hints) > a.HintsViewed {
		a.HintsViewed = len(hints)
	}
	return hints
}

func (a *Attempt) HintsUsed(q lesson.Question) int {
	if len(a.UnlockedHints(q)) == 0 {
		return 0
	}
	return a.HintsViewed
}

// SolutionAvailable holds once every hint has been unlocked and another wrong answer was given.
func (a *Attempt) SolutionAvailable(q lesson.Question) bool {
	return a.WrongAttempts > len(q.Hints)
}

// RevealSolution marks the solution as used. Later correct answers regress.
func (a *Attempt) RevealSolution(q lesson.Question) (string, error) {
	if !a.SolutionAvailable(q) {
		return "", ErrSolutionUnavailable
	}
	a.UsedSolution = true
	if q.SolutionFeedback != "" {
		return q.SolutionFeedback, nil
	}
	return q.Solution, nil
}
