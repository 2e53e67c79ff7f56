package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/pathtutor/internal/lesson"
)

func newValidateCommand() *cobra.Command {
	var lessons bool

	command := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and, optionally, the lesson data of the class",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration is valid")
			if !lessons {
				return nil
			}

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

			errs := lesson.Validate(snapshot)
			displayLessonValidation(cmd.OutOrStdout(), len(snapshot.Lessons), errs)
			if len(errs) > 0 {
				return fmt.Errorf("validation failed with %d error(s)", len(errs))
			}
			return nil
		},
	}
	command.Flags().BoolVar(&lessons, "lessons", false, "Also fetch and check the lessons of the class")
	return command
}

func displayLessonValidation(output io.Writer, lessonCount int, errs []lesson.ValidationError) {
	_, _ = fmt.Fprintln(output, "\n=== Lesson Validation ===")
	if len(errs) == 0 {
		_, _ = fmt.Fprintf(output, "✓ All %d lesson(s) passed!\n", lessonCount)
		return
	}
	_, _ = fmt.Fprintf(output, "✗ Errors (%d):\n", len(errs))
	for _, err := range errs {
		_, _ = fmt.Fprintf(output, "  - %s\n", err.Error())
	}
}
