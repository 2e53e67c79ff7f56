package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/pathtutor/internal/leaderboard"
)

func newLeaderboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the points leaderboard of the class",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Learner.ClassID == "" {
				return fmt.Errorf("a class is required: set learner.class_id, PATHTUTOR_CLASS_ID or --class")
			}

			reader := leaderboard.NewReader(cfg.Progress.BaseURL, time.Duration(cfg.Progress.TimeoutSeconds)*time.Second)
			entries, err := reader.Fetch(cmd.Context(), cfg.Learner.ClassID)
			if err != nil {
				return fmt.Errorf("leaderboard.Fetch() > %w", err)
			}
			leaderboard.Show(cmd.OutOrStdout(), entries, cfg.Learner.UserID)
			return nil
		},
	}
}
