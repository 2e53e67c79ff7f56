package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Flusher is anything with pending work to push to the progress store.
type Flusher interface {
	Flush(ctx context.Context) (int, error)
}

// Scheduler flushes outboxes on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	interval  time.Duration
	flushers  func() []Flusher
}

// NewScheduler takes a function so sessions opened after Start are flushed too.
func NewScheduler(interval time.Duration, flushers func() []Flusher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		interval:  interval,
		flushers:  flushers,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.flushAll, ctx); err != nil {
		return fmt.Errorf("scheduler.Do > %w", err)
	}
	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) flushAll(ctx context.Context) {
	for _, f := range s.flushers() {
		if _, err := f.Flush(ctx); err != nil {
			slog.Default().Warn("outbox flush failed", "error", err)
		}
	}
}
