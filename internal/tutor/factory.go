package tutor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/at-ishikawa/pathtutor/internal/learning"
	"github.com/at-ishikawa/pathtutor/internal/outbox"
	"github.com/at-ishikawa/pathtutor/internal/progress"
	"github.com/at-ishikawa/pathtutor/internal/session"
	"github.com/at-ishikawa/pathtutor/internal/unlock"
)

// Factory opens tutors that share one progress client and session store.
// Every tutor gets its own outbox.
type Factory struct {
	Progress    progress.Client
	Sessions    session.Store
	AnswerLogs  learning.AnswerLogRepository
	AutoAdvance bool
	Now         func() time.Time
}

// Open restores the learner's session context under a new session id and loads their lessons.
func (f *Factory) Open(ctx context.Context, learnerID, classID string, role session.Role) (*Tutor, error) {
	sc, err := session.LoadOrNew(ctx, f.Sessions, learnerID, classID, role)
	if err != nil {
		return nil, fmt.Errorf("session.LoadOrNew(%s) > %w", learnerID, err)
	}
	// Students and observers of one learner share the saved context but never a session.
	sc.ID = uuid.NewString()

	t := New(Dependencies{
		Progress:   f.Progress,
		Sequencer:  unlock.NewSequencer(f.Progress),
		Sessions:   f.Sessions,
		AnswerLogs: f.AnswerLogs,
		Outbox:     outbox.New(f.Progress),
		Now:        f.Now,
	}, sc, f.AutoAdvance)
	if err := t.Load(ctx); err != nil {
		return nil, fmt.Errorf("tutor.Load > %w", err)
	}
	return t, nil
}
