package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/pathtutor/internal/lesson"
	"github.com/at-ishikawa/pathtutor/internal/session"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		debugMode bool
		wantLevel slog.Level
	}{
		{
			name:      "debug mode enabled",
			debugMode: true,
			wantLevel: slog.LevelDebug,
		},
		{
			name:      "debug mode disabled",
			debugMode: false,
			wantLevel: slog.LevelInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupLogger(tt.debugMode)
			logger := slog.Default()
			assert.NotNil(t, logger)
			assert.Equal(t, tt.wantLevel <= slog.LevelDebug, logger.Enabled(context.Background(), slog.LevelDebug))
		})
	}
}

func TestNewRootCommand(t *testing.T) {
	cmd := newRootCommand()

	assert.Equal(t, "pathtutor", cmd.Use)
	for _, name := range []string{"practice", "lessons", "report", "rating", "history", "leaderboard", "validate"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
	for _, flag := range []string{"config", "debug", "learner", "class"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}

	reportCmd, _, err := cmd.Find([]string{"report"})
	require.NoError(t, err)
	assert.Equal(t, "md", reportCmd.Flags().Lookup("format").DefValue)

	ratingCmd, _, err := cmd.Find([]string{"rating"})
	require.NoError(t, err)
	assert.True(t, ratingCmd.HasSubCommands())
}

func writeConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	configFile = path
	t.Cleanup(func() {
		configFile = ""
		learnerID = ""
		classID = ""
	})
}

func TestLoadLearnerConfig(t *testing.T) {
	t.Run("flags override the file", func(t *testing.T) {
		writeConfig(t, "learner:\n  user_id: u-1\n  class_id: c-1\n  role: parent\n")
		learnerID = "u-2"

		cfg, role, err := loadLearnerConfig()
		require.NoError(t, err)
		assert.Equal(t, "u-2", cfg.Learner.UserID)
		assert.Equal(t, "c-1", cfg.Learner.ClassID)
		assert.Equal(t, session.RoleParent, role)
	})

	t.Run("learner is required", func(t *testing.T) {
		writeConfig(t, "learner:\n  class_id: c-1\n")

		_, _, err := loadLearnerConfig()
		assert.ErrorContains(t, err, "a learner and a class are required")
	})
}

func TestOpenEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, "learner:\n  user_id: u-1\n  class_id: c-1\n")
	cfg, _, err := loadLearnerConfig()
	require.NoError(t, err)
	cfg.Database.Path = filepath.Join(dir, "pathtutor.db")
	cfg.Session.Directory = filepath.Join(dir, "sessions")

	env, err := openEnvironment(context.Background(), cfg)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, env.Close())
	}()

	assert.IsType(t, &session.YAMLStore{}, env.sessions)
	factory := env.factory()
	assert.True(t, factory.AutoAdvance)
	assert.NotNil(t, factory.AnswerLogs)

	logs, err := env.answerLogs.FindByLearner(context.Background(), "u-1", 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func boolPtr(b bool) *bool {
	return &b
}

func TestDisplayLessons(t *testing.T) {
	correct := true
	snapshot := lesson.NewSnapshot(
		lesson.Lesson{
			ID:        "lesson_1",
			Title:     "Adding",
			Completed: boolPtr(true),
			Unlocked:  boolPtr(true),
			Questions: lesson.Questions{
				Easy:   []lesson.Question{{ID: "q1", Correct: &correct}},
				Medium: []lesson.Question{{ID: "q2", Correct: &correct}},
			},
		},
		lesson.Lesson{ID: "lesson_2", Title: "Subtracting", Unlocked: boolPtr(true)},
		lesson.Lesson{ID: "lesson_3"},
	)
	snapshot.Stale = true

	var got bytes.Buffer
	displayLessons(&got, snapshot)

	assert.Contains(t, got.String(), "(offline: showing the last saved progress)")
	assert.Contains(t, got.String(), "  lesson_1     Adding                         completed    2 questions    3 points")
	assert.Contains(t, got.String(), "> lesson_2     Subtracting                    unlocked")
	assert.Contains(t, got.String(), "  lesson_3     Module 3                       locked")
	assert.Contains(t, got.String(), "Total points: 3")
}

func TestDisplayRating(t *testing.T) {
	sc := session.New("u-1", "c-1", session.RoleStudent)
	sc.Rating = 1234
	sc.Streak = 2
	sc.UpdatedAt = time.Time{}

	var got bytes.Buffer
	displayRating(&got, sc)
	assert.Equal(t, "Learner:    u-1\nRating:     1234\nStreak:     2\nDifficulty: easy\n", got.String())
}

func TestDisplayLessonValidation(t *testing.T) {
	var got bytes.Buffer
	displayLessonValidation(&got, 2, nil)
	assert.Contains(t, got.String(), "✓ All 2 lesson(s) passed!")

	got.Reset()
	displayLessonValidation(&got, 2, []lesson.ValidationError{{LessonID: "lesson_1", QuestionID: "q1", Message: "solution is empty"}})
	assert.Contains(t, got.String(), "✗ Errors (1):")
	assert.Contains(t, got.String(), "  - lesson_1/q1: solution is empty")
}
