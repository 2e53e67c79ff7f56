package progress_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/pathtutor/internal/lesson"
	mock_progress "github.com/at-ishikawa/pathtutor/internal/mocks/progress"
	"github.com/at-ishikawa/pathtutor/internal/progress"
)

func TestCachedClient_FetchProgress(t *testing.T) {
	unlocked := true
	fresh := lesson.NewSnapshot(
		lesson.Lesson{ID: "lesson_1", Title: "Counting", Unlocked: &unlocked},
		lesson.Lesson{ID: "lesson_2", Title: "Fractions"},
	)

	t.Run("stale snapshot is served when the store is down", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockClient := mock_progress.NewMockClient(ctrl)
		client := progress.NewCachedClient(mockClient, progress.NewFileCache(t.TempDir()))

		gomock.InOrder(
			mockClient.EXPECT().FetchProgress(gomock.Any(), "u-1", "c-1").Return(fresh, nil),
			mockClient.EXPECT().FetchProgress(gomock.Any(), "u-1", "c-1").
				Return(lesson.Snapshot{}, &progress.ResponseError{StatusCode: 503, Message: "down"}),
		)

		got, err := client.FetchProgress(context.Background(), "u-1", "c-1")
		require.NoError(t, err)
		assert.False(t, got.Stale)

		got, err = client.FetchProgress(context.Background(), "u-1", "c-1")
		require.NoError(t, err)
		assert.True(t, got.Stale)
		assert.Equal(t, []string{"lesson_1", "lesson_2"}, got.Keys())
		assert.Equal(t, "Counting", got.Lessons["lesson_1"].Title)
	})

	t.Run("no cache returns the error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockClient := mock_progress.NewMockClient(ctrl)
		client := progress.NewCachedClient(mockClient, progress.NewFileCache(t.TempDir()))

		mockClient.EXPECT().FetchProgress(gomock.Any(), "u-1", "c-1").
			Return(lesson.Snapshot{}, &progress.ResponseError{StatusCode: 503, Message: "down"})

		_, err := client.FetchProgress(context.Background(), "u-1", "c-1")
		assert.Error(t, err)
	})

	t.Run("client errors are not masked by the cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockClient := mock_progress.NewMockClient(ctrl)
		client := progress.NewCachedClient(mockClient, progress.NewFileCache(t.TempDir()))

		gomock.InOrder(
			mockClient.EXPECT().FetchProgress(gomock.Any(), "u-1", "c-1").Return(fresh, nil),
			mockClient.EXPECT().FetchProgress(gomock.Any(), "u-1", "c-1").
				Return(lesson.Snapshot{}, &progress.ResponseError{StatusCode: 404, Message: "unknown class"}),
		)

		_, err := client.FetchProgress(context.Background(), "u-1", "c-1")
		require.NoError(t, err)
		_, err = client.FetchProgress(context.Background(), "u-1", "c-1")
		assert.Error(t, err)
	})
}

func TestCachedClient_PassesWritesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mock_progress.NewMockClient(ctrl)
	client := progress.NewCachedClient(mockClient, progress.NewFileCache(t.TempDir()))

	submission := progress.AnswerSubmission{LearnerID: "u-1", ClassID: "c-1", LessonID: "lesson_1", QuestionID: "q1", Correct: true}
	mockClient.EXPECT().SubmitAnswer(gomock.Any(), submission).Return(nil)
	mockClient.EXPECT().CompleteLesson(gomock.Any(), "u-1", "c-1", "lesson_1").
		Return(progress.CompleteResult{Success: true, CompletedLesson: "lesson_1"}, nil)

	require.NoError(t, client.SubmitAnswer(context.Background(), submission))
	got, err := client.CompleteLesson(context.Background(), "u-1", "c-1", "lesson_1")
	require.NoError(t, err)
	assert.Equal(t, "lesson_1", got.CompletedLesson)
}
