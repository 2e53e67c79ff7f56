package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/pathtutor/internal/report"
)

func newReportCommand() *cobra.Command {
	var format, templatePath string

	command := &cobra.Command{
		Use:   "report",
		Short: "Write a progress summary of the learner as Markdown, PDF or Excel",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			outputFormat, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
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
			in := report.Input{
				LearnerID: cfg.Learner.UserID,
				ClassID:   cfg.Learner.ClassID,
				Snapshot:  t.Snapshot(),
				Now:       time.Now(),
			}
			if !role.IsObserver() {
				in.Rating = t.Session().Rating
			}
			if observer, err := t.Observe(); err == nil {
				view := observer.Snapshot()
				in.Current = &view
			}

			path, err := report.NewWriter(cfg.Outputs.ReportDirectory, templatePath).Write(report.Summarize(in), outputFormat)
			if err != nil {
				return fmt.Errorf("report.Write() > %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
			return nil
		},
	}
	command.Flags().StringVar(&format, "format", string(report.FormatMarkdown), "output format: md, pdf or xlsx")
	command.Flags().StringVar(&templatePath, "template", "", "custom Markdown template")
	return command
}
