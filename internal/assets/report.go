package assets

import (
	"fmt"
	"io"
	"time"
)

// ReportTemplate is the data passed to progress report templates.
type ReportTemplate struct {
	LearnerID   string
	ClassID     string
	GeneratedAt time.Time
	Rating      int
	Points      int
	Stale       bool
	Current     *ReportPosition
	Lessons     []ReportLesson
}

// ReportPosition describes where the learner is in the active lesson.
type ReportPosition struct {
	LessonID   string
	Question   int
	PathLength int
	Streak     int
	Difficulty string
	Phase      string
}

type ReportLesson struct {
	Name           string
	Status         string
	Total          int
	Answered       int
	Correct        int
	Incorrect      int
	AvgTimeSeconds int
	Points         int
}

func WriteProgressReport(output io.Writer, templatePath string, data ReportTemplate) error {
	tmpl, err := ParseProgressReportTemplate(templatePath)
	if err != nil {
		return fmt.Errorf("ParseProgressReportTemplate() > %w", err)
	}
	if err := tmpl.Execute(output, data); err != nil {
		return fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return nil
}
