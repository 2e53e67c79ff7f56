package outbox

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_progress "github.com/at-ishikawa/pathtutor/internal/mocks/progress"
	"github.com/at-ishikawa/pathtutor/internal/progress"
)

func submission(questionID string) progress.AnswerSubmission {
	return progress.AnswerSubmission{LearnerID: "u-1", ClassID: "c-1", LessonID: "lesson_1", QuestionID: questionID}
}

func TestOutbox_Flush(t *testing.T) {
	t.Run("replays in order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mock_progress.NewMockClient(ctrl)
		box := New(client)
		box.Enqueue(submission("q1"))
		box.Enqueue(submission("q2"))

		gomock.InOrder(
			client.EXPECT().SubmitAnswer(gomock.Any(), submission("q1")).Return(nil),
			client.EXPECT().SubmitAnswer(gomock.Any(), submission("q2")).Return(nil),
		)

		sent, err := box.Flush(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, sent)
		assert.Equal(t, 0, box.Len())
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mock_progress.NewMockClient(ctrl)
		box := New(client)
		box.Enqueue(submission("q1"))
		box.Enqueue(submission("q2"))
		box.Enqueue(submission("q3"))

		gomock.InOrder(
			client.EXPECT().SubmitAnswer(gomock.Any(), submission("q1")).Return(nil),
			client.EXPECT().SubmitAnswer(gomock.Any(), submission("q2")).Return(&progress.ResponseError{StatusCode: 503}),
		)

		sent, err := box.Flush(context.Background())
		assert.Error(t, err)
		assert.Equal(t, 1, sent)
		assert.Equal(t, []progress.AnswerSubmission{submission("q2"), submission("q3")}, box.Pending())
	})

	t.Run("empty outbox makes no calls", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		box := New(mock_progress.NewMockClient(ctrl))
		sent, err := box.Flush(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, sent)
	})
}

type countingFlusher struct {
	calls atomic.Int32
}

func (f *countingFlusher) Flush(ctx context.Context) (int, error) {
	f.calls.Add(1)
	return 0, nil
}

func TestScheduler(t *testing.T) {
	flusher := &countingFlusher{}
	scheduler := NewScheduler(50*time.Millisecond, func() []Flusher {
		return []Flusher{flusher}
	})
	require.NoError(t, scheduler.Start(context.Background()))
	defer scheduler.Stop()

	assert.Eventually(t, func() bool {
		return flusher.calls.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)
}
