package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/pathtutor/internal/lesson"
	"github.com/at-ishikawa/pathtutor/internal/testutil"
)

func executeCommand(t *testing.T, cfgPath, stdin string, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	t.Cleanup(func() {
		configFile = ""
		learnerID = ""
		classID = ""
	})

	cmd := newRootCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func twoLessons() []lesson.Lesson {
	return []lesson.Lesson{
		testutil.NewLesson("lesson_1",
			testutil.WithUnlocked(true),
			testutil.WithQuestions(lesson.TierEasy, testutil.NewQuestion("q1", "2", "count")),
		),
		testutil.NewLesson("lesson_2",
			testutil.WithUnlocked(false),
			testutil.WithQuestions(lesson.TierEasy, testutil.NewQuestion("q2", "3")),
		),
	}
}

func TestLessonsCommand(t *testing.T) {
	tmpDir := t.TempDir()
	server := testutil.NewProgressServer(t, twoLessons()...)
	cfgPath := testutil.SetupTestConfigWithServer(t, tmpDir, server.URL)

	got, err := executeCommand(t, cfgPath, "", "lessons")
	require.NoError(t, err)
	assert.Contains(t, got, "> lesson_1     Lesson lesson_1")
	assert.Contains(t, got, "  lesson_2     Lesson lesson_2                locked       1 questions    0 points")
	assert.Contains(t, got, "Total points: 0")
}

func TestPracticeCommand(t *testing.T) {
	tmpDir := t.TempDir()
	server := testutil.NewProgressServer(t, twoLessons()...)
	cfgPath := testutil.SetupTestConfigWithServer(t, tmpDir, server.URL)

	got, err := executeCommand(t, cfgPath, "2\n:quit\n", "practice")
	require.NoError(t, err)
	assert.Contains(t, got, "Learner u-1 in class c-1, rating 1100")
	assert.Contains(t, got, "What is q1?")
	assert.Contains(t, got, "Correct! Rating 1100 -> 1118")
	assert.Contains(t, got, "Lesson complete!")
	assert.Contains(t, got, "Unlocked lesson_2.")
	assert.Contains(t, got, "What is q2?")

	submissions := server.Submissions()
	require.Len(t, submissions, 1)
	assert.Equal(t, "q1", submissions[0].QuestionID)
	assert.True(t, submissions[0].Correct)
	require.NotNil(t, server.Lesson("lesson_2").Unlocked)
	assert.True(t, *server.Lesson("lesson_2").Unlocked)

	got, err = executeCommand(t, cfgPath, "", "rating", "show")
	require.NoError(t, err)
	assert.Contains(t, got, "Rating:     1118")

	got, err = executeCommand(t, cfgPath, "", "history")
	require.NoError(t, err)
	assert.Contains(t, got, "Totals:     1 (1)")
	assert.Contains(t, got, "Rating: 1100 -> 1118")

	got, err = executeCommand(t, cfgPath, "", "rating", "reset")
	require.NoError(t, err)
	assert.Contains(t, got, "Rating:     1100")
}

func TestReportCommand(t *testing.T) {
	tmpDir := t.TempDir()
	server := testutil.NewProgressServer(t, twoLessons()...)
	cfgPath := testutil.SetupTestConfigWithServer(t, tmpDir, server.URL)

	tests := []struct {
		name     string
		args     []string
		wantFile string
		wantErr  string
	}{
		{name: "markdown", args: []string{"report"}, wantFile: "u-1_c-1.md"},
		{name: "excel", args: []string{"report", "--format", "xlsx"}, wantFile: "u-1_c-1.xlsx"},
		{name: "unknown format", args: []string{"report", "--format", "doc"}, wantErr: "unsupported report format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := executeCommand(t, cfgPath, "", tt.args...)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, got, "Report written to ")
			assert.FileExists(t, filepath.Join(tmpDir, "reports", tt.wantFile))
		})
	}
}

func TestLeaderboardCommand(t *testing.T) {
	tmpDir := t.TempDir()
	server := testutil.NewProgressServer(t, twoLessons()...)
	server.SetLeaderboard(
		map[string]any{"userid": "u-2", "username": "bob", "points": 2},
		map[string]any{"userid": "u-1", "username": "amy", "points": 5},
	)
	cfgPath := testutil.SetupTestConfigWithServer(t, tmpDir, server.URL)

	got, err := executeCommand(t, cfgPath, "", "leaderboard")
	require.NoError(t, err)
	assert.Equal(t, "*  1. amy                           5\n   2. bob                           2\n", got)
}

func TestValidateCommand(t *testing.T) {
	tmpDir := t.TempDir()
	server := testutil.NewProgressServer(t,
		testutil.NewLesson("lesson_1", testutil.WithQuestions(lesson.TierEasy, testutil.NewQuestion("q1", ""))),
	)
	cfgPath := testutil.SetupTestConfigWithServer(t, tmpDir, server.URL)

	got, err := executeCommand(t, cfgPath, "", "validate")
	require.NoError(t, err)
	assert.Contains(t, got, "✓ Configuration is valid")

	got, err = executeCommand(t, cfgPath, "", "validate", "--lessons")
	assert.ErrorContains(t, err, "validation failed with 1 error(s)")
	assert.Contains(t, got, "  - lesson_1/q1: solution is empty")
}

func TestHistoryCommand_InvalidFlags(t *testing.T) {
	cfgPath := testutil.SetupTestConfig(t, t.TempDir())

	_, err := executeCommand(t, cfgPath, "", "history", "--month", "3")
	assert.ErrorContains(t, err, "--month requires --year")

	_, err = executeCommand(t, cfgPath, "", "history", "--year", "2025", "--month", "13")
	assert.ErrorContains(t, err, "--month must be between 1 and 12")
}
