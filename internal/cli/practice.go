package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/at-ishikawa/pathtutor/internal/lesson"
	"github.com/at-ishikawa/pathtutor/internal/progression"
	"github.com/at-ishikawa/pathtutor/internal/session"
	"github.com/at-ishikawa/pathtutor/internal/tutor"
	"github.com/at-ishikawa/pathtutor/internal/unlock"
)

// Tutor is the part of tutor.Tutor the practice loop drives.
type Tutor interface {
	CurrentQuestion() (lesson.Question, lesson.Tier, error)
	Submit(ctx context.Context, answer string, timeTaken time.Duration) (tutor.Outcome, error)
	ShowHint() ([]string, error)
	RevealSolution(ctx context.Context) (string, error)
	Move(delta int) error
	SelectLesson(lessonID string) error
	RetryUnlock(ctx context.Context) (unlock.Result, error)
	PendingUnlock() string
	Modules() []lesson.Module
	Viewer() (progression.Viewer, error)
	Session() session.Context
}

const practiceHelp = `Commands:
  :hint            show the hints unlocked so far
  :solution        reveal the solution (counts as a wrong answer)
  :next, :prev     move along the question path
  :lessons         list lessons
  :select <id>     switch to another lesson
  :retry           retry a failed lesson unlock
  :help            show this help
  :quit            save and exit
Anything else is taken as your answer.
`

// PracticeCLI runs one question per Session call.
type PracticeCLI struct {
	*InteractiveCLI
	tutor Tutor
	// shown is the question id whose prompt was printed last.
	shown string
}

func NewPracticeCLI(t Tutor, stdin io.Reader, stdout io.Writer) *PracticeCLI {
	return &PracticeCLI{
		InteractiveCLI: newInteractiveCLI(stdin, stdout),
		tutor:          t,
	}
}

// Start prints the lesson list and the help text.
func (r *PracticeCLI) Start() {
	sc := r.tutor.Session()
	r.printf("Learner %s in class %s, rating %d\n\n", r.bold.Sprint(sc.LearnerID), sc.ClassID, sc.Rating)
	r.printLessons()
	r.printf("\n%s\n", practiceHelp)
}

func (r *PracticeCLI) Session(ctx context.Context) error {
	q, tier, err := r.tutor.CurrentQuestion()
	switch {
	case err == nil:
		if r.shown != q.ID {
			r.printQuestion(q, tier)
			r.shown = q.ID
		}
		r.printf("> ")
	case errors.Is(err, tutor.ErrNoLesson), errors.Is(err, progression.ErrNoQuestion):
		r.printf("No question to practice. Use :lessons and :select <id>, or :quit.\n> ")
	default:
		return fmt.Errorf("tutor.CurrentQuestion() > %w", err)
	}

	input, err := r.readLine()
	if err != nil {
		return err
	}
	if strings.HasPrefix(input, ":") {
		return r.command(ctx, input)
	}
	return r.answer(ctx, input)
}

func (r *PracticeCLI) printQuestion(q lesson.Question, tier lesson.Tier) {
	position := ""
	if viewer, err := r.tutor.Viewer(); err == nil {
		view := viewer.Snapshot()
		position = fmt.Sprintf(" %d/%d", view.PathIndex+1, view.PathLength)
	}
	r.printf("\n[%s%s] ", strings.ToUpper(tier.String()), position)
	_, _ = r.bold.Fprintln(r.stdoutWriter, q.Content)
}

func (r *PracticeCLI) answer(ctx context.Context, input string) error {
	outcome, err := r.tutor.Submit(ctx, input, 0)
	if err != nil {
		return r.reportError(err)
	}

	if outcome.Correct {
		r.printf("✅ ")
		_, _ = r.green.Fprintf(r.stdoutWriter, "Correct! Rating %d -> %d (streak %d)\n", outcome.RatingBefore, outcome.RatingAfter, outcome.Streak)
	} else {
		r.printf("❌ ")
		_, _ = r.red.Fprintf(r.stdoutWriter, "Not quite. Rating %d -> %d\n", outcome.RatingBefore, outcome.RatingAfter)
		for i, hint := range outcome.Hints {
			r.printf("   Hint %d: %s\n", i+1, r.italic.Sprint(hint))
		}
		if outcome.SolutionAvailable {
			r.printf("   Type :solution to see the answer.\n")
		}
	}
	if outcome.Directive == progression.RegressOne {
		r.printf("   Let's go back one step to practice a bit more.\n")
	}
	if outcome.SyncQueued {
		_, _ = r.yellow.Fprintln(r.stdoutWriter, "   Your answer will be saved when the connection is back.")
	}

	if outcome.LessonComplete {
		r.printLessonComplete(outcome)
	}
	return nil
}

func (r *PracticeCLI) printLessonComplete(outcome tutor.Outcome) {
	_, _ = r.green.Fprintln(r.stdoutWriter, "\nLesson complete!")
	if outcome.UnlockErr != nil {
		_, _ = r.yellow.Fprintf(r.stdoutWriter, "Could not unlock the next lesson: %v\nType :retry to try again.\n", outcome.UnlockErr)
		return
	}
	r.printUnlock(*outcome.Unlock)
}

func (r *PracticeCLI) printUnlock(result unlock.Result) {
	if result.UnlockedLesson != "" {
		r.printf("Unlocked %s.\n", r.bold.Sprint(result.UnlockedLesson))
	}
	if result.Selected != "" {
		r.printf("Continuing with %s.\n", r.bold.Sprint(result.Selected))
		return
	}
	r.printf("\n")
	r.printLessons()
}

func (r *PracticeCLI) command(ctx context.Context, input string) error {
	fields := strings.Fields(input)
	switch fields[0] {
	case ":quit", ":q":
		return errEnd
	case ":help":
		r.printf("%s", practiceHelp)
	case ":hint":
		hints, err := r.tutor.ShowHint()
		if err != nil {
			return r.reportError(err)
		}
		if len(hints) == 0 {
			r.printf("No hints yet. Hints unlock after a wrong answer.\n")
		}
		for i, hint := range hints {
			r.printf("Hint %d: %s\n", i+1, r.italic.Sprint(hint))
		}
	case ":solution":
		solution, err := r.tutor.RevealSolution(ctx)
		if err != nil {
			return r.reportError(err)
		}
		r.printf("The answer is %s\n", r.bold.Sprint(solution))
	case ":next", ":prev":
		delta := 1
		if fields[0] == ":prev" {
			delta = -1
		}
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				r.printf("invalid step: %s\n", fields[1])
				return nil
			}
			delta *= n
		}
		if err := r.tutor.Move(delta); err != nil {
			return r.reportError(err)
		}
		r.shown = ""
	case ":lessons":
		r.printLessons()
	case ":select":
		if len(fields) < 2 {
			r.printf("usage: :select <lesson id>\n")
			return nil
		}
		if err := r.tutor.SelectLesson(fields[1]); err != nil {
			return r.reportError(err)
		}
		r.shown = ""
	case ":retry":
		result, err := r.tutor.RetryUnlock(ctx)
		if err != nil {
			return r.reportError(err)
		}
		r.printUnlock(result)
	default:
		r.printf("unknown command %s, type :help\n", fields[0])
	}
	return nil
}

// reportError prints errors the learner can act on and returns the rest.
func (r *PracticeCLI) reportError(err error) error {
	switch {
	case errors.Is(err, progression.ErrEmptyAnswer):
		r.printf("Please type an answer.\n")
	case errors.Is(err, progression.ErrSolutionUnavailable):
		r.printf("The solution unlocks after you have used all hints.\n")
	case errors.Is(err, progression.ErrLessonComplete):
		r.printf("This lesson is complete. Use :lessons and :select <id>.\n")
	case errors.Is(err, tutor.ErrLessonLocked), errors.Is(err, tutor.ErrUnknownLesson):
		_, _ = r.red.Fprintln(r.stdoutWriter, err.Error())
	case errors.Is(err, tutor.ErrNothingToRetry):
		r.printf("There is no unlock to retry.\n")
	case errors.Is(err, tutor.ErrReadOnly):
		r.printf("Observers cannot answer questions.\n")
	case errors.Is(err, unlock.ErrUnlockFailed):
		_, _ = r.yellow.Fprintf(r.stdoutWriter, "Unlock failed again: %v\n", err)
	case errors.Is(err, tutor.ErrNoLesson), errors.Is(err, progression.ErrNoQuestion):
		r.printf("Select a lesson first.\n")
	default:
		return err
	}
	return nil
}

func (r *PracticeCLI) printLessons() {
	pending := r.tutor.PendingUnlock()
	for _, m := range r.tutor.Modules() {
		status := strings.ToUpper(string(m.Status))
		switch m.Status {
		case lesson.StatusCompleted:
			status = r.green.Sprint(status)
		case lesson.StatusLocked:
			status = r.red.Sprint(status)
		}
		line := fmt.Sprintf("  %-12s %-30s %s", m.ID, m.Name, status)
		if m.ID == pending {
			line += r.yellow.Sprint(" (unlock pending)")
		}
		r.printf("%s\n", line)
	}
}
