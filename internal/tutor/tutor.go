// Package tutor runs one learner session: it grades answers, updates the rating,
// moves through the question path, syncs with the progress store and unlocks lessons.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/at-ishikawa/pathtutor/internal/learning"
	"github.com/at-ishikawa/pathtutor/internal/lesson"
	"github.com/at-ishikawa/pathtutor/internal/outbox"
	"github.com/at-ishikawa/pathtutor/internal/progress"
	"github.com/at-ishikawa/pathtutor/internal/progression"
	"github.com/at-ishikawa/pathtutor/internal/rating"
	"github.com/at-ishikawa/pathtutor/internal/session"
	"github.com/at-ishikawa/pathtutor/internal/unlock"
)

var (
	ErrBusy           = errors.New("a lesson unlock is still in progress")
	ErrReadOnly       = errors.New("observers cannot change progress")
	ErrNoLesson       = errors.New("no lesson selected")
	ErrUnknownLesson  = errors.New("unknown lesson")
	ErrLessonLocked   = errors.New("lesson is locked")
	ErrNothingToRetry = errors.New("no lesson unlock to retry")
)

// Dependencies are the collaborators of a Tutor.
// AnswerLogs and Outbox are optional.
type Dependencies struct {
	Progress   progress.Client
	Sequencer  *unlock.Sequencer
	Sessions   session.Store
	AnswerLogs learning.AnswerLogRepository
	Outbox     *outbox.Outbox
	Now        func() time.Time
}

// Outcome describes what happened after one answer.
type Outcome struct {
	Correct           bool                  `json:"correct"`
	Directive         progression.Directive `json:"directive"`
	RatingBefore      int                   `json:"rating_before"`
	RatingAfter       int                   `json:"rating_after"`
	Streak            int                   `json:"streak"`
	Difficulty        lesson.Tier           `json:"difficulty"`
	PathIndex         int                   `json:"path_index"`
	Hints             []string              `json:"hints,omitempty"`
	SolutionAvailable bool                  `json:"solution_available"`
	LessonComplete    bool                  `json:"lesson_complete"`

	// SyncQueued is set when the store rejected the answer and it waits in the outbox.
	SyncQueued bool           `json:"sync_queued"`
	Unlock     *unlock.Result `json:"unlock,omitempty"`
	UnlockErr  error          `json:"-"`
}

type Tutor struct {
	mu   sync.Mutex
	deps Dependencies

	session     *session.Context
	autoAdvance bool

	snapshot lesson.Snapshot
	modules  []lesson.Module
	paths    *lesson.PathCache

	state     *progression.State
	questions map[string]lesson.Question
	attempt   *progression.Attempt
	shownAt   time.Time

	unlocking     bool
	pendingUnlock string
}

// New creates a tutor for a loaded session context.
// Observers never auto-advance.
func New(deps Dependencies, sc *session.Context, autoAdvance bool) *Tutor {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Tutor{
		deps:        deps,
		session:     sc,
		autoAdvance: autoAdvance && !sc.Role.IsObserver(),
		paths:       lesson.NewPathCache(),
	}
}

// Load fetches the lesson snapshot and selects a lesson to work on.
// The previously selected lesson is restored when it is still open.
func (t *Tutor) Load(ctx context.Context) error {
	snapshot, err := t.deps.Progress.FetchProgress(ctx, t.session.LearnerID, t.session.ClassID)
	if err != nil {
		return fmt.Errorf("progress.FetchProgress > %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.applySnapshot(snapshot)

	if m, ok := lesson.FindModule(t.modules, t.session.SelectedLessonID); ok && t.selectable(m) {
		return t.selectLesson(m.ID)
	}
	if m, ok := lesson.FirstAvailable(t.modules); ok {
		return t.selectLesson(m.ID)
	}
	if len(t.modules) > 0 && t.selectable(t.modules[0]) {
		return t.selectLesson(t.modules[0].ID)
	}
	return nil
}

func (t *Tutor) applySnapshot(snapshot lesson.Snapshot) {
	t.snapshot = snapshot
	t.modules = lesson.Modules(snapshot)
	t.paths.Invalidate()
}

func (t *Tutor) selectable(m lesson.Module) bool {
	return m.Unlocked || m.Completed || t.session.Role.IsObserver()
}

// SelectLesson switches the active lesson and starts its path from the beginning.
func (t *Tutor) SelectLesson(lessonID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.unlocking {
		return ErrBusy
	}
	return t.selectLesson(lessonID)
}

func (t *Tutor) selectLesson(lessonID string) error {
	m, ok := lesson.FindModule(t.modules, lessonID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLesson, lessonID)
	}
	if !t.selectable(m) {
		return fmt.Errorf("%w: %s", ErrLessonLocked, lessonID)
	}

	path := t.paths.Get(m.Lesson)
	t.state = progression.NewState(m.ID, path)
	t.questions = lesson.IndexQuestions(m.Lesson)
	t.session.SelectedLessonID = m.ID
	t.session.Streak = 0
	t.session.Difficulty = t.state.Difficulty
	t.resetAttempt()

	slog.Default().Debug("lesson selected", "learner", t.session.LearnerID, "lesson", m.ID, "path_length", path.Len())
	return nil
}

func (t *Tutor) resetAttempt() {
	t.attempt = nil
	t.shownAt = t.deps.Now()
	if item, err := t.state.Current(); err == nil {
		t.attempt = progression.NewAttempt(item.QuestionID)
	}
}

// CurrentQuestion returns the question at the current path position.
func (t *Tutor) CurrentQuestion() (lesson.Question, lesson.Tier, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	q, item, err := t.current()
	if err != nil {
		return lesson.Question{}, "", err
	}
	return q, item.Tier, nil
}

func (t *Tutor) current() (lesson.Question, lesson.PathItem, error) {
	if t.state == nil {
		return lesson.Question{}, lesson.PathItem{}, ErrNoLesson
	}
	item, err := t.state.Current()
	if err != nil {
		return lesson.Question{}, lesson.PathItem{}, err
	}
	return t.questions[item.QuestionID], item, nil
}

func (t *Tutor) student() (*progression.Student, error) {
	if t.session.Role.IsObserver() {
		return nil, ErrReadOnly
	}
	if t.state == nil {
		return nil, ErrNoLesson
	}
	return progression.NewStudent(t.state), nil
}

// Submit grades an answer. A timeTaken of zero is measured from when the question was shown.
//
// Sync failures are queued in the outbox when one is configured. When the answer
// completes the lesson the store is asked to unlock the next one; a failed unlock
// is reported in Outcome.UnlockErr and can be retried with RetryUnlock.
func (t *Tutor) Submit(ctx context.Context, answer string, timeTaken time.Duration) (Outcome, error) {
	t.mu.Lock()
	if t.unlocking {
		t.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	outcome, lessonID, err := t.submit(ctx, answer, timeTaken)
	if err != nil || !outcome.LessonComplete {
		t.mu.Unlock()
		return outcome, err
	}
	t.unlocking = true
	t.mu.Unlock()

	// The completion is idempotent on the store, so it runs to the end even if the caller goes away.
	result, err := t.completeLesson(context.WithoutCancel(ctx), lessonID)
	if err != nil {
		outcome.UnlockErr = err
		return outcome, nil
	}
	outcome.Unlock = &result
	return outcome, nil
}

func (t *Tutor) submit(ctx context.Context, answer string, timeTaken time.Duration) (Outcome, string, error) {
	student, err := t.student()
	if err != nil {
		return Outcome{}, "", err
	}
	if t.state.Terminal() {
		return Outcome{}, "", progression.ErrLessonComplete
	}
	q, item, err := t.current()
	if err != nil {
		return Outcome{}, "", err
	}

	event, err := t.attempt.Check(q, answer)
	if err != nil {
		return Outcome{}, "", err
	}

	before := t.session.Rating
	after := rating.Update(before, q.EffectiveRating(), event.Correct, t.state.Streak)
	directive, err := student.Answer(event)
	if err != nil {
		return Outcome{}, "", err
	}
	t.session.Rating = after
	t.session.Streak = t.state.Streak
	t.session.Difficulty = t.state.Difficulty

	outcome := Outcome{
		Correct:        event.Correct,
		Directive:      directive,
		RatingBefore:   before,
		RatingAfter:    after,
		Streak:         t.state.Streak,
		Difficulty:     t.state.Difficulty,
		PathIndex:      t.state.PathIndex,
		LessonComplete: t.state.Terminal(),
	}
	if event.Correct {
		t.resetAttempt()
	} else {
		outcome.Hints = t.attempt.UnlockedHints(q)
		outcome.SolutionAvailable = t.attempt.SolutionAvailable(q)
	}

	seconds := t.elapsedSeconds(timeTaken)
	outcome.SyncQueued = t.sync(ctx, progress.AnswerSubmission{
		LearnerID:  t.session.LearnerID,
		ClassID:    t.session.ClassID,
		LessonID:   t.state.LessonID,
		QuestionID: item.QuestionID,
		Correct:    event.Correct,
		TimeTaken:  seconds,
	})
	t.logAnswer(ctx, &learning.AnswerLog{
		SessionID:        t.session.ID,
		LearnerID:        t.session.LearnerID,
		ClassID:          t.session.ClassID,
		LessonID:         t.state.LessonID,
		QuestionID:       item.QuestionID,
		Difficulty:       item.Tier.String(),
		Correct:          event.Correct,
		UsedSolution:     event.UsedSolution,
		WrongAttempts:    event.WrongAttempts,
		TimeTakenSeconds: seconds,
		RatingBefore:     before,
		RatingAfter:      after,
		AnsweredAt:       t.deps.Now().UTC(),
	})
	if event.Correct {
		t.markAnswered(t.state.LessonID, item.QuestionID, seconds)
	}
	return outcome, t.state.LessonID, nil
}

func (t *Tutor) elapsedSeconds(timeTaken time.Duration) int {
	if timeTaken <= 0 {
		timeTaken = t.deps.Now().Sub(t.shownAt)
	}
	if timeTaken < 0 {
		return 0
	}
	return int(timeTaken / time.Second)
}

// sync reports whether the submission was queued for a later retry.
func (t *Tutor) sync(ctx context.Context, submission progress.AnswerSubmission) bool {
	err := t.deps.Progress.SubmitAnswer(ctx, submission)
	if err == nil {
		return false
	}
	slog.Default().Warn("failed to sync answer",
		"learner", submission.LearnerID,
		"lesson", submission.LessonID,
		"question", submission.QuestionID,
		"error", err,
	)
	if t.deps.Outbox == nil {
		return false
	}
	t.deps.Outbox.Enqueue(submission)
	return true
}

func (t *Tutor) logAnswer(ctx context.Context, log *learning.AnswerLog) {
	if t.deps.AnswerLogs == nil {
		return
	}
	if err := t.deps.AnswerLogs.Create(ctx, log); err != nil {
		slog.Default().Warn("failed to record answer", "learner", log.LearnerID, "question", log.QuestionID, "error", err)
	}
}

// markAnswered mirrors a correct answer into the local snapshot until the next refresh.
func (t *Tutor) markAnswered(lessonID, questionID string, seconds int) {
	l, ok := t.snapshot.Lessons[lessonID]
	if !ok {
		return
	}
	correct := true
	for _, tier := range lesson.Tiers {
		questions := l.Questions.ByTier(tier)
		for i := range questions {
			if questions[i].ID == questionID {
				questions[i].Correct = &correct
				questions[i].TimeTaken = &seconds
			}
		}
	}
}

func (t *Tutor) completeLesson(ctx context.Context, lessonID string) (unlock.Result, error) {
	result, err := t.deps.Sequencer.CompleteLesson(ctx, t.session.LearnerID, t.session.ClassID, lessonID, t.autoAdvance)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.unlocking = false
	if err != nil {
		t.pendingUnlock = lessonID
		slog.Default().Warn("lesson unlock failed", "learner", t.session.LearnerID, "lesson", lessonID, "error", err)
		return unlock.Result{}, err
	}

	t.pendingUnlock = ""
	t.applySnapshot(result.Snapshot)
	if result.Selected != "" {
		if err := t.selectLesson(result.Selected); err != nil {
			return result, err
		}
	}
	return result, nil
}

// RetryUnlock resends the completion of a lesson whose unlock failed.
func (t *Tutor) RetryUnlock(ctx context.Context) (unlock.Result, error) {
	t.mu.Lock()
	if t.unlocking {
		t.mu.Unlock()
		return unlock.Result{}, ErrBusy
	}
	if t.pendingUnlock == "" {
		t.mu.Unlock()
		return unlock.Result{}, ErrNothingToRetry
	}
	lessonID := t.pendingUnlock
	t.unlocking = true
	t.mu.Unlock()

	return t.completeLesson(context.WithoutCancel(ctx), lessonID)
}

// PendingUnlock returns the lesson whose unlock has to be retried, if any.
func (t *Tutor) PendingUnlock() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pendingUnlock
}

// ShowHint returns the hints unlocked so far for the current question.
// Only students mark them as viewed.
func (t *Tutor) ShowHint() ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	q, _, err := t.current()
	if err != nil {
		return nil, err
	}
	if t.attempt == nil {
		return nil, nil
	}
	if t.session.Role.IsObserver() {
		return t.attempt.UnlockedHints(q), nil
	}
	return t.attempt.ViewHints(q), nil
}

// SolutionAvailable reports whether the current question's solution may be revealed.
func (t *Tutor) SolutionAvailable() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	q, _, err := t.current()
	if err != nil || t.attempt == nil {
		return false
	}
	return t.attempt.SolutionAvailable(q)
}

// RevealSolution shows the solution of the current question and reports it to the
// store as an incorrect answer. A later correct answer to the question regresses.
func (t *Tutor) RevealSolution(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.unlocking {
		return "", ErrBusy
	}
	if _, err := t.student(); err != nil {
		return "", err
	}
	q, item, err := t.current()
	if err != nil {
		return "", err
	}
	solution, err := t.attempt.RevealSolution(q)
	if err != nil {
		return "", err
	}

	t.sync(ctx, progress.AnswerSubmission{
		LearnerID:  t.session.LearnerID,
		ClassID:    t.session.ClassID,
		LessonID:   t.state.LessonID,
		QuestionID: item.QuestionID,
		Correct:    false,
		TimeTaken:  t.elapsedSeconds(0),
	})
	return solution, nil
}

// Move navigates the path by delta positions, clamped to its ends.
func (t *Tutor) Move(delta int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.unlocking {
		return ErrBusy
	}
	if _, err := t.student(); err != nil {
		return err
	}
	if err := t.state.Move(delta); err != nil {
		return err
	}
	t.session.Difficulty = t.state.Difficulty
	t.resetAttempt()
	return nil
}

// Refresh reloads lesson flags from the store without changing the active lesson.
func (t *Tutor) Refresh(ctx context.Context) error {
	snapshot, err := t.deps.Progress.FetchProgress(ctx, t.session.LearnerID, t.session.ClassID)
	if err != nil {
		return fmt.Errorf("progress.FetchProgress > %w", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.applySnapshot(snapshot)
	return nil
}

// Viewer returns the capability-scoped view of the active lesson.
func (t *Tutor) Viewer() (progression.Viewer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == nil {
		return nil, ErrNoLesson
	}
	if t.session.Role.IsObserver() {
		return progression.NewObserver(t.state), nil
	}
	return progression.NewStudent(t.state), nil
}

// Observe returns a read-only copy of the active lesson's progression.
func (t *Tutor) Observe() (*progression.Observer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == nil {
		return nil, ErrNoLesson
	}
	return progression.NewObserver(t.state), nil
}

func (t *Tutor) Modules() []lesson.Module {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]lesson.Module(nil), t.modules...)
}

func (t *Tutor) Snapshot() lesson.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot
}

// Session returns a copy of the session context.
func (t *Tutor) Session() session.Context {
	t.mu.Lock()
	defer t.mu.Unlock()
	return *t.session
}

// Save persists the session context. Observer sessions are never saved.
func (t *Tutor) Save(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session.Role.IsObserver() {
		return nil
	}
	t.session.UpdatedAt = t.deps.Now().UTC()
	if err := t.deps.Sessions.Save(ctx, t.session); err != nil {
		return fmt.Errorf("sessions.Save > %w", err)
	}
	return nil
}

// Flush replays answers queued while the store was unreachable.
func (t *Tutor) Flush(ctx context.Context) (int, error) {
	if t.deps.Outbox == nil {
		return 0, nil
	}
	return t.deps.Outbox.Flush(ctx)
}

// Close persists the session context and flushes queued answers.
func (t *Tutor) Close(ctx context.Context) error {
	if _, err := t.Flush(ctx); err != nil {
		slog.Default().Warn("answers left in outbox", "learner", t.session.LearnerID, "pending", t.deps.Outbox.Len(), "error", err)
	}
	return t.Save(ctx)
}
