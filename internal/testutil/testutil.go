// Package testutil provides shared test helpers for config files, lesson fixtures and a fake progress store.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/pathtutor/internal/lesson"
)

// SetupTestConfig creates a config file for learner u-1 in class c-1 with every
// directory and the SQLite database under tmpDir. Returns the path to the config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()
	return SetupTestConfigWithServer(t, tmpDir, "http://127.0.0.1:1")
}

// SetupTestConfigWithServer is SetupTestConfig pointing the progress store at baseURL.
func SetupTestConfigWithServer(t *testing.T, tmpDir, baseURL string) string {
	t.Helper()

	dirs := []string{"sessions", "cache", "reports"}
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, d), 0755))
	}

	configContent := fmt.Sprintf(`learner:
  user_id: u-1
  class_id: c-1
progress:
  base_url: %s
  timeout_seconds: 2
  retry_attempts: 0
  cache_directory: %s
session:
  store: yaml
  directory: %s
database:
  driver: sqlite
  path: %s
outputs:
  report_directory: %s
`,
		baseURL,
		filepath.Join(tmpDir, "cache"),
		filepath.Join(tmpDir, "sessions"),
		filepath.Join(tmpDir, "pathtutor.db"),
		filepath.Join(tmpDir, "reports"),
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// LessonOption configures optional fields when creating a lesson fixture.
type LessonOption func(*lesson.Lesson)

func WithUnlocked(unlocked bool) LessonOption {
	return func(l *lesson.Lesson) {
		l.Unlocked = &unlocked
	}
}

func WithCompleted(completed bool) LessonOption {
	return func(l *lesson.Lesson) {
		l.Completed = &completed
	}
}

// WithQuestions appends questions to a tier of the lesson.
func WithQuestions(tier lesson.Tier, questions ...lesson.Question) LessonOption {
	return func(l *lesson.Lesson) {
		switch tier {
		case lesson.TierEasy:
			l.Questions.Easy = append(l.Questions.Easy, questions...)
		case lesson.TierMedium:
			l.Questions.Medium = append(l.Questions.Medium, questions...)
		case lesson.TierHard:
			l.Questions.Hard = append(l.Questions.Hard, questions...)
		}
	}
}

// NewLesson creates a lesson titled after its id. Flags are left unset unless an option sets them.
func NewLesson(id string, opts ...LessonOption) lesson.Lesson {
	l := lesson.Lesson{ID: id, Title: "Lesson " + id}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

func NewQuestion(id, solution string, hints ...string) lesson.Question {
	return lesson.Question{
		ID:       id,
		Content:  "What is " + id + "?",
		Solution: solution,
		Hints:    hints,
	}
}
