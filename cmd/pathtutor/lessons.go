package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/pathtutor/internal/lesson"
)

func newLessonsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lessons",
		Short: "List the lessons of the class with their status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadLearnerConfig()
			if err != nil {
				return err
			}
			client, closeClient := newProgressClient(cfg)
			defer func() {
				_ = closeClient()
			}()

			snapshot, err := client.FetchProgress(cmd.Context(), cfg.Learner.UserID, cfg.Learner.ClassID)
			if err != nil {
				return fmt.Errorf("FetchProgress() > %w", err)
			}
			displayLessons(cmd.OutOrStdout(), snapshot)
			return nil
		},
	}
}

func displayLessons(output io.Writer, snapshot lesson.Snapshot) {
	if snapshot.Stale {
		_, _ = fmt.Fprintln(output, "(offline: showing the last saved progress)")
	}
	modules := lesson.Modules(snapshot)
	if len(modules) == 0 {
		_, _ = fmt.Fprintln(output, "No lessons found.")
		return
	}
	next, hasNext := lesson.FirstAvailable(modules)
	for _, m := range modules {
		marker := " "
		if hasNext && m.ID == next.ID {
			marker = ">"
		}
		_, _ = fmt.Fprintf(output, "%s %-12s %-30s %-10s %3d questions %4d points\n",
			marker, m.ID, m.Name, m.Status, m.Lesson.Questions.Len(), lesson.LessonPoints(m.Lesson))
	}
	_, _ = fmt.Fprintf(output, "\nTotal points: %d\n", lesson.Points(snapshot))
}
