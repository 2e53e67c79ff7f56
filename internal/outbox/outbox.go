package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/at-ishikawa/pathtutor/internal/progress"
)

// Outbox holds answer submissions the progress store did not accept yet.
// Submissions are replayed in the order they were enqueued.
type Outbox struct {
	mu      sync.Mutex
	client  progress.Client
	pending []progress.AnswerSubmission
}

func New(client progress.Client) *Outbox {
	return &Outbox{client: client}
}

func (o *Outbox) Enqueue(submission progress.AnswerSubmission) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, submission)
}

func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

func (o *Outbox) Pending() []progress.AnswerSubmission {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]progress.AnswerSubmission(nil), o.pending...)
}

// Flush sends pending submissions and stops at the first failure.
// It returns the number of submissions delivered.
func (o *Outbox) Flush(ctx context.Context) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	sent := 0
	for _, submission := range o.pending {
		if err := o.client.SubmitAnswer(ctx, submission); err != nil {
			o.pending = o.pending[sent:]
			return sent, fmt.Errorf("client.SubmitAnswer(%s/%s) > %w", submission.LessonID, submission.QuestionID, err)
		}
		sent++
	}
	o.pending = nil
	if sent > 0 {
		slog.Default().Info("flushed answer submissions", "count", sent)
	}
	return sent, nil
}
