package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/pathtutor/internal/session"
)

func newRatingCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "rating",
		Short: "Show or reset the learner's skill rating",
	}
	command.AddCommand(newRatingShowCommand(), newRatingResetCommand())
	return command
}

func newRatingShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current rating and streak",
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

			sc, err := session.LoadOrNew(ctx, env.sessions, cfg.Learner.UserID, cfg.Learner.ClassID, role)
			if err != nil {
				return fmt.Errorf("session.LoadOrNew() > %w", err)
			}
			displayRating(cmd.OutOrStdout(), sc)
			return nil
		},
	}
}

func newRatingResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the rating to the default for a new learner",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, role, err := loadLearnerConfig()
			if err != nil {
				return err
			}
			if role.IsObserver() {
				return fmt.Errorf("a %s cannot reset the rating", role)
			}
			env, err := openEnvironment(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = env.Close()
			}()

			sc, err := session.LoadOrNew(ctx, env.sessions, cfg.Learner.UserID, cfg.Learner.ClassID, role)
			if err != nil {
				return fmt.Errorf("session.LoadOrNew() > %w", err)
			}
			sc.ResetRating()
			if err := env.sessions.Save(ctx, sc); err != nil {
				return fmt.Errorf("sessions.Save() > %w", err)
			}
			displayRating(cmd.OutOrStdout(), sc)
			return nil
		},
	}
}

func displayRating(output io.Writer, sc *session.Context) {
	_, _ = fmt.Fprintf(output, "Learner:    %s\n", sc.LearnerID)
	_, _ = fmt.Fprintf(output, "Rating:     %d\n", sc.Rating)
	_, _ = fmt.Fprintf(output, "Streak:     %d\n", sc.Streak)
	_, _ = fmt.Fprintf(output, "Difficulty: %s\n", sc.Difficulty)
	if !sc.UpdatedAt.IsZero() {
		_, _ = fmt.Fprintf(output, "Updated:    %s\n", sc.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
}
