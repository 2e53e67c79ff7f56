package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/pathtutor/internal/lesson"
)

func threeQuestionPath() lesson.Path {
	return lesson.Path{
		{QuestionID: "Q1", Tier: lesson.TierEasy},
		{QuestionID: "Q2", Tier: lesson.TierMedium},
		{QuestionID: "Q3", Tier: lesson.TierHard},
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name           string
		correct        bool
		usedSolution   bool
		wrongAttempts  int
		lessonComplete bool
		expected       Directive
	}{
		{name: "incorrect holds", correct: false, expected: Hold},
		{name: "incorrect after solution holds", correct: false, usedSolution: true, wrongAttempts: 3, expected: Hold},
		{name: "correct with solution regresses", correct: true, usedSolution: true, expected: RegressOne},
		{name: "correct after wrong attempts regresses", correct: true, wrongAttempts: 2, expected: RegressOne},
		{name: "clean correct advances", correct: true, expected: Advance},
		{name: "correct completing lesson is terminal", correct: true, wrongAttempts: 1, lessonComplete: true, expected: None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Decide(tt.correct, tt.usedSolution, tt.wrongAttempts, tt.lessonComplete))
		})
	}
}

func TestNewState(t *testing.T) {
	s := NewState("l1", lesson.Path{{QuestionID: "M1", Tier: lesson.TierMedium}})

	assert.Equal(t, 0, s.PathIndex)
	assert.Equal(t, 0, s.Streak)
	assert.Equal(t, lesson.TierMedium, s.Difficulty)
	assert.Empty(t, s.Completed)
	assert.Equal(t, PhaseNotStarted, s.Phase())
}

func TestState_Apply(t *testing.T) {
	t.Run("clean correct answer advances and grows streak", func(t *testing.T) {
		s := NewState("l1", threeQuestionPath())

		directive, err := s.Apply(AnswerEvent{Correct: true})
		require.NoError(t, err)

		assert.Equal(t, Advance, directive)
		assert.Equal(t, 1, s.PathIndex)
		assert.Equal(t, 1, s.Streak)
		assert.Equal(t, lesson.TierMedium, s.Difficulty)
		assert.Equal(t, PhaseInProgress, s.Phase())
	})

	t.Run("incorrect answer holds and resets streak", func(t *testing.T) {
		s := NewState("l1", threeQuestionPath())
		s.PathIndex = 1
		s.Streak = 4

		directive, err := s.Apply(AnswerEvent{Correct: false})
		require.NoError(t, err)

		assert.Equal(t, Hold, directive)
		assert.Equal(t, 1, s.PathIndex)
		assert.Equal(t, 0, s.Streak)
		assert.False(t, s.Completed["Q2"])
	})

	t.Run("correct after a wrong attempt regresses one step", func(t *testing.T) {
		s := NewState("l1", threeQuestionPath())
		s.PathIndex = 1
		s.Streak = 2

		directive, err := s.Apply(AnswerEvent{Correct: true, WrongAttempts: 1})
		require.NoError(t, err)

		assert.Equal(t, RegressOne, directive)
		assert.Equal(t, 0, s.PathIndex)
		assert.Equal(t, 3, s.Streak)
		assert.Equal(t, lesson.TierEasy, s.Difficulty)
		assert.True(t, s.Completed["Q2"])
	})

	t.Run("regression is floored at the first question", func(t *testing.T) {
		s := NewState("l1", threeQuestionPath())

		directive, err := s.Apply(AnswerEvent{Correct: true, UsedSolution: true})
		require.NoError(t, err)

		assert.Equal(t, RegressOne, directive)
		assert.Equal(t, 0, s.PathIndex)
	})

	t.Run("advance is capped at the last question", func(t *testing.T) {
		s := NewState("l1", threeQuestionPath())
		s.PathIndex = 2

		directive, err := s.Apply(AnswerEvent{Correct: true})
		require.NoError(t, err)

		assert.Equal(t, Advance, directive)
		assert.Equal(t, 2, s.PathIndex)
	})

	t.Run("repeated regressions are not capped", func(t *testing.T) {
		s := NewState("l1", threeQuestionPath())
		s.PathIndex = 2

		for _, want := range []int{1, 0} {
			directive, err := s.Apply(AnswerEvent{Correct: true, WrongAttempts: 1})
			require.NoError(t, err)
			assert.Equal(t, RegressOne, directive)
			assert.Equal(t, want, s.PathIndex)
		}
	})

	t.Run("last missing question completes the lesson", func(t *testing.T) {
		s := NewState("l1", threeQuestionPath())
		s.Completed["Q1"] = true
		s.Completed["Q2"] = true
		s.PathIndex = 2

		directive, err := s.Apply(AnswerEvent{Correct: true, WrongAttempts: 2})
		require.NoError(t, err)

		assert.Equal(t, None, directive)
		assert.True(t, s.IsComplete())
		assert.True(t, s.Terminal())
		assert.Equal(t, PhaseComplete, s.Phase())

		_, err = s.Apply(AnswerEvent{Correct: true})
		assert.ErrorIs(t, err, ErrLessonComplete)
	})

	t.Run("empty path accepts no answers", func(t *testing.T) {
		s := NewState("l1", lesson.Path{})

		_, err := s.Current()
		assert.ErrorIs(t, err, ErrNoQuestion)
		_, err = s.Apply(AnswerEvent{Correct: true})
		assert.ErrorIs(t, err, ErrNoQuestion)
		assert.Equal(t, lesson.TierEasy, s.Difficulty)
		assert.False(t, s.Terminal())
	})
}

func TestState_IsComplete(t *testing.T) {
	s := NewState("l1", threeQuestionPath())
	s.Completed["Q1"] = true
	s.Completed["Q2"] = true
	assert.False(t, s.IsComplete())

	s.Completed["Q3"] = true
	assert.True(t, s.IsComplete())

	answered, total := s.Progress()
	assert.Equal(t, 3, answered)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"Q1", "Q2", "Q3"}, s.CompletedIDs())
}

func TestState_Reset(t *testing.T) {
	s := NewState("l1", threeQuestionPath())
	_, err := s.Apply(AnswerEvent{Correct: true})
	require.NoError(t, err)

	s.Reset(lesson.Path{{QuestionID: "H1", Tier: lesson.TierHard}})

	assert.Equal(t, 0, s.PathIndex)
	assert.Equal(t, 0, s.Streak)
	assert.Empty(t, s.Completed)
	assert.Equal(t, lesson.TierHard, s.Difficulty)
}

func TestState_Move(t *testing.T) {
	s := NewState("l1", threeQuestionPath())

	require.NoError(t, s.Move(1))
	assert.Equal(t, 1, s.PathIndex)
	assert.Equal(t, lesson.TierMedium, s.Difficulty)

	require.NoError(t, s.Move(5))
	assert.Equal(t, 2, s.PathIndex)

	require.NoError(t, s.Move(-9))
	assert.Equal(t, 0, s.PathIndex)

	assert.ErrorIs(t, NewState("l2", nil).Move(1), ErrNoQuestion)
}

func TestViewer(t *testing.T) {
	s := NewState("l1", threeQuestionPath())
	student := NewStudent(s)
	observer := NewObserver(s)

	assert.True(t, student.CanAnswer())
	assert.False(t, observer.CanAnswer())

	_, err := student.Answer(AnswerEvent{Correct: true})
	require.NoError(t, err)

	assert.Equal(t, 1, student.Snapshot().PathIndex)
	assert.Equal(t, "Q2", student.Snapshot().Current)
	assert.Equal(t, 0, observer.Snapshot().PathIndex, "observer holds a copy")
	assert.Equal(t, "l1", observer.LessonID())

	viewers := []Viewer{student, observer}
	for _, v := range viewers {
		_, isStudent := v.(*Student)
		assert.Equal(t, isStudent, v.CanAnswer())
	}
}
