// Package report summarizes a learner's progress for observers and renders it
// as Markdown, PDF or XLSX.
package report

import (
	"time"

	"github.com/at-ishikawa/pathtutor/internal/lesson"
	"github.com/at-ishikawa/pathtutor/internal/progression"
)

type LessonSummary struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Status    lesson.Status `json:"status"`
	Total     int           `json:"total"`
	Answered  int           `json:"answered"`
	Correct   int           `json:"correct"`
	Incorrect int           `json:"incorrect"`

	// AvgTimeSeconds averages the recorded time of answered questions.
	AvgTimeSeconds int `json:"avg_time_seconds"`
	Points         int `json:"points"`
}

// CompletionPercent is the share of questions answered correctly.
func (s LessonSummary) CompletionPercent() int {
	if s.Total == 0 {
		return 0
	}
	return s.Correct * 100 / s.Total
}

type Summary struct {
	LearnerID   string                 `json:"learner_id"`
	ClassID     string                 `json:"class_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	Rating      int                    `json:"rating,omitempty"`
	Points      int                    `json:"points"`
	Stale       bool                   `json:"stale"`
	Lessons     []LessonSummary        `json:"lessons"`
	Current     *progression.StateView `json:"current,omitempty"`
}

// Input is what a summary is built from. Current and Rating are optional.
type Input struct {
	LearnerID string
	ClassID   string
	Snapshot  lesson.Snapshot
	Rating    int
	Current   *progression.StateView
	Now       time.Time
}

func Summarize(in Input) Summary {
	modules := lesson.Modules(in.Snapshot)
	summary := Summary{
		LearnerID:   in.LearnerID,
		ClassID:     in.ClassID,
		GeneratedAt: in.Now,
		Rating:      in.Rating,
		Points:      lesson.Points(in.Snapshot),
		Stale:       in.Snapshot.Stale,
		Lessons:     make([]LessonSummary, 0, len(modules)),
		Current:     in.Current,
	}
	for _, m := range modules {
		summary.Lessons = append(summary.Lessons, summarizeLesson(m))
	}
	return summary
}

func summarizeLesson(m lesson.Module) LessonSummary {
	s := LessonSummary{
		ID:     m.ID,
		Name:   m.Name,
		Status: m.Status,
		Points: lesson.LessonPoints(m.Lesson),
	}

	totalTime, timed := 0, 0
	seen := make(map[string]bool)
	for _, tier := range lesson.Tiers {
		for _, q := range m.Lesson.Questions.ByTier(tier) {
			if seen[q.ID] {
				continue
			}
			seen[q.ID] = true
			s.Total++
			if q.Correct == nil {
				continue
			}
			s.Answered++
			if *q.Correct {
				s.Correct++
			} else {
				s.Incorrect++
			}
			if q.TimeTaken != nil {
				totalTime += *q.TimeTaken
				timed++
			}
		}
	}
	if timed > 0 {
		s.AvgTimeSeconds = totalTime / timed
	}
	return s
}
