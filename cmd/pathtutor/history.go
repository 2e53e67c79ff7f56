package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/pathtutor/internal/cli"
	"github.com/at-ishikawa/pathtutor/internal/report"
)

func newHistoryCommand() *cobra.Command {
	var year, month, limit int

	command := &cobra.Command{
		Use:   "history",
		Short: "Show monthly statistics of the answers recorded on this machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			if month != 0 && year == 0 {
				return fmt.Errorf("--month requires --year to be specified")
			}
			if month < 0 || month > 12 {
				return fmt.Errorf("--month must be between 1 and 12")
			}
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}

			ctx := cmd.Context()
			cfg, _, err := loadLearnerConfig()
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

			logs, err := env.answerLogs.FindByLearner(ctx, cfg.Learner.UserID, limit)
			if err != nil {
				return fmt.Errorf("answerLogs.FindByLearner() > %w", err)
			}
			cli.WriteHistoryReport(cmd.OutOrStdout(), report.CalculateStatistics(logs, year, month))
			return nil
		},
	}

	command.Flags().IntVar(&year, "year", 0, "Filter by year (e.g., 2025)")
	command.Flags().IntVar(&month, "month", 0, "Filter by month (1-12), requires --year")
	command.Flags().IntVar(&limit, "limit", 5000, "Maximum number of latest answers to read")
	return command
}
