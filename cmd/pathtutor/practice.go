package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/pathtutor/internal/cli"
	"github.com/at-ishikawa/pathtutor/internal/outbox"
)

func newPracticeCommand() *cobra.Command {
	var lessonID string

	command := &cobra.Command{
		Use:   "practice",
		Short: "Practice the questions of a lesson, one at a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, role, err := loadLearnerConfig()
			if err != nil {
				return err
			}
			env, err := openEnvironment(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = env.Close()
			}()

			t, err := env.factory().Open(ctx, cfg.Learner.UserID, cfg.Learner.ClassID, role)
			if err != nil {
				return fmt.Errorf("factory.Open() > %w", err)
			}
			if lessonID != "" {
				if err := t.SelectLesson(lessonID); err != nil {
					return fmt.Errorf("SelectLesson(%s) > %w", lessonID, err)
				}
			}

			scheduler := outbox.NewScheduler(
				time.Duration(cfg.Sync.FlushIntervalSeconds)*time.Second,
				func() []outbox.Flusher { return []outbox.Flusher{t} },
			)
			if err := scheduler.Start(ctx); err != nil {
				return fmt.Errorf("scheduler.Start() > %w", err)
			}

			practiceCLI := cli.NewPracticeCLI(t, cmd.InOrStdin(), cmd.OutOrStdout())
			practiceCLI.Start()
			runErr := practiceCLI.Run(ctx, practiceCLI)

			scheduler.Stop()
			if err := t.Close(context.WithoutCancel(ctx)); err != nil {
				return errors.Join(runErr, fmt.Errorf("tutor.Close() > %w", err))
			}
			return runErr
		},
	}
	command.Flags().StringVar(&lessonID, "lesson", "", "lesson to start with instead of the first open one")
	return command
}
