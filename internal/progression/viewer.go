package progression

import "github.com/at-ishikawa/pathtutor/internal/lesson"

// Viewer is either a Student, who may answer, or an Observer, who may only read.
type Viewer interface {
	LessonID() string
	Snapshot() StateView
	CanAnswer() bool
}

// StateView is a copy of a progression state for display.
type StateView struct {
	LessonID   string      `json:"lesson_id" yaml:"lesson_id"`
	PathIndex  int         `json:"path_index" yaml:"path_index"`
	PathLength int         `json:"path_length" yaml:"path_length"`
	Answered   int         `json:"answered" yaml:"answered"`
	Streak     int         `json:"streak" yaml:"streak"`
	Difficulty lesson.Tier `json:"difficulty" yaml:"difficulty"`
	Phase      Phase       `json:"phase" yaml:"phase"`
	Current    string      `json:"current_question_id,omitempty" yaml:"current_question_id,omitempty"`
}

func viewOf(s *State) StateView {
	answered, total := s.Progress()
	view := StateView{
		LessonID:   s.LessonID,
		PathIndex:  s.PathIndex,
		PathLength: total,
		Answered:   answered,
		Streak:     s.Streak,
		Difficulty: s.Difficulty,
		Phase:      s.Phase(),
	}
	if item, err := s.Current(); err == nil {
		view.Current = item.QuestionID
	}
	return view
}

type Student struct {
	state *State
}

func NewStudent(state *State) *Student {
	return &Student{state: state}
}

func (s *Student) LessonID() string    { return s.state.LessonID }
func (s *Student) Snapshot() StateView { return viewOf(s.state) }
func (s *Student) CanAnswer() bool     { return true }

// State exposes the writable state. Only students have access to it.
func (s *Student) State() *State {
	return s.state
}

func (s *Student) Answer(event AnswerEvent) (Directive, error) {
	return s.state.Apply(event)
}

type Observer struct {
	view StateView
}

// NewObserver copies the state so later changes are not visible through it.
func NewObserver(state *State) *Observer {
	return &Observer{view: viewOf(state)}
}

func (o *Observer) LessonID() string    { return o.view.LessonID }
func (o *Observer) Snapshot() StateView { return o.view }
func (o *Observer) CanAnswer() bool     { return false }
