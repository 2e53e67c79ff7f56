package cli

import (
	"fmt"
	"io"

	"github.com/at-ishikawa/pathtutor/internal/report"
)

// WriteHistoryReport prints monthly answer statistics, newest month first.
func WriteHistoryReport(output io.Writer, result report.StatisticsResult) {
	if len(result.Periods) == 0 {
		_, _ = fmt.Fprintln(output, "No answers recorded for the specified period.")
		return
	}

	_, _ = fmt.Fprintln(output, "Practice History")
	_, _ = fmt.Fprintln(output, "================")
	_, _ = fmt.Fprintln(output)
	_, _ = fmt.Fprintf(output, "%-10s  %-18s  %-22s  %-8s\n", "Period", "Answers (Correct)", "Questions (First try)", "Avg time")
	_, _ = fmt.Fprintf(output, "%-10s  %-18s  %-22s  %-8s\n", "------", "-----------------", "---------------------", "--------")
	for _, p := range result.Periods {
		_, _ = fmt.Fprintf(output, "%-10s  %-18s  %-22s  %-8s\n",
			p.Period,
			fmt.Sprintf("%d (%d)", p.AnswersCount, p.CorrectCount),
			fmt.Sprintf("%d (%d)", p.QuestionsUnique, p.FirstTryUnique),
			fmt.Sprintf("%ds", p.AvgTimeSeconds),
		)
	}

	a := result.Aggregate
	_, _ = fmt.Fprintln(output)
	_, _ = fmt.Fprintf(output, "%-10s  %-18s  %-22s\n",
		"Totals:",
		fmt.Sprintf("%d (%d)", a.AnswersCount, a.CorrectCount),
		fmt.Sprintf("%d (%d)", a.QuestionsUnique, a.FirstTryUnique),
	)
	_, _ = fmt.Fprintf(output, "Rating: %d -> %d\n", a.RatingStart, a.RatingEnd)
}
