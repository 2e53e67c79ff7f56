package progression

import (
	"errors"

	"github.com/at-ishikawa/pathtutor/internal/lesson"
)

var (
	ErrNoQuestion     = errors.New("no question available")
	ErrLessonComplete = errors.New("lesson is already complete")
)

type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseInProgress Phase = "in_progress"
	PhaseComplete   Phase = "complete"
)

// AnswerEvent is one submission as seen by the remediation policy.
// WrongAttempts counts the wrong answers given to the question before this one.
type AnswerEvent struct {
	Correct       bool
	HintsUsed     int
	UsedSolution  bool
	WrongAttempts int
}

// State tracks a learner's position within one lesson.
type State struct {
	LessonID   string
	Path       lesson.Path
	PathIndex  int
	Completed  map[string]bool
	Streak     int
	Difficulty lesson.Tier
	terminal   bool
}

func NewState(lessonID string, path lesson.Path) *State {
	s := &State{LessonID: lessonID}
	s.Reset(path)
	return s
}

// Reset starts the lesson over with a new path.
func (s *State) Reset(path lesson.Path) {
	s.Path = path
	s.PathIndex = 0
	s.Completed = make(map[string]bool, len(path))
	s.Streak = 0
	s.terminal = false
	s.syncDifficulty()
}

func (s *State) Current() (lesson.PathItem, error) {
	item, ok := s.Path.At(s.PathIndex)
	if !ok {
		return lesson.PathItem{}, ErrNoQuestion
	}
	return item, nil
}

func (s *State) IsComplete() bool {
	for _, id := range s.Path.IDs() {
		if !s.Completed[id] {
			return false
		}
	}
	return true
}

// Terminal reports whether the lesson finished during this session.
func (s *State) Terminal() bool {
	return s.terminal
}

func (s *State) Phase() Phase {
	switch {
	case len(s.Path) > 0 && s.IsComplete():
		return PhaseComplete
	case len(s.Completed) == 0 && s.PathIndex == 0:
		return PhaseNotStarted
	default:
		return PhaseInProgress
	}
}

// Progress returns the number of path questions answered correctly and the path length.
func (s *State) Progress() (answered int, total int) {
	for _, id := range s.Path.IDs() {
		if s.Completed[id] {
			answered++
		}
	}
	return answered, len(s.Path)
}

// Apply records an answer and moves the position.
// It returns None once the answer completes the lesson.
func (s *State) Apply(event AnswerEvent) (Directive, error) {
	if s.terminal {
		return None, ErrLessonComplete
	}
	item, err := s.Current()
	if err != nil {
		return None, err
	}

	if event.Correct {
		s.Completed[item.QuestionID] = true
		s.Streak++
	} else {
		s.Streak = 0
	}

	complete := event.Correct && s.IsComplete()
	directive := Decide(event.Correct, event.UsedSolution, event.WrongAttempts, complete)
	if complete {
		s.terminal = true
		return directive, nil
	}
	s.move(directive.offset())
	return directive, nil
}

// Move navigates manually by delta positions.
func (s *State) Move(delta int) error {
	if len(s.Path) == 0 {
		return ErrNoQuestion
	}
	s.move(delta)
	return nil
}

func (s *State) move(delta int) {
	next := s.PathIndex + delta
	if next > len(s.Path)-1 {
		next = len(s.Path) - 1
	}
	if next < 0 {
		next = 0
	}
	s.PathIndex = next
	s.syncDifficulty()
}

func (s *State) syncDifficulty() {
	if item, ok := s.Path.At(s.PathIndex); ok {
		s.Difficulty = item.Tier
		return
	}
	s.Difficulty = lesson.TierEasy
}

// CompletedIDs returns completed question ids in path order.
func (s *State) CompletedIDs() []string {
	var ids []string
	for _, id := range s.Path.IDs() {
		if s.Completed[id] {
			ids = append(ids, id)
		}
	}
	return ids
}
