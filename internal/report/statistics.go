package report

import (
	"fmt"
	"sort"

	"github.com/at-ishikawa/pathtutor/internal/learning"
)

// PeriodStatistics holds answer statistics for one month, "2025-01".
type PeriodStatistics struct {
	Period          string
	AnswersCount    int
	CorrectCount    int
	QuestionsUnique int

	// FirstTryUnique counts questions answered correctly without a wrong attempt or the solution.
	FirstTryUnique int
	AvgTimeSeconds int
}

type AggregateStatistics struct {
	AnswersCount    int
	CorrectCount    int
	QuestionsUnique int
	FirstTryUnique  int
	RatingStart     int
	RatingEnd       int
}

type StatisticsResult struct {
	Periods   []PeriodStatistics
	Aggregate AggregateStatistics
}

type periodData struct {
	answers        int
	correct        int
	totalTime      int
	questions      map[string]struct{}
	firstTryUnique map[string]struct{}
}

// CalculateStatistics aggregates answer logs per month.
// year and month filter the logs; 0 means no filter.
func CalculateStatistics(logs []learning.AnswerLog, year, month int) StatisticsResult {
	stats := make(map[string]*periodData)
	globalQuestions := make(map[string]struct{})
	globalFirstTry := make(map[string]struct{})

	var filtered []learning.AnswerLog
	for _, log := range logs {
		if log.AnsweredAt.IsZero() {
			continue
		}
		if !matchesFilter(log.AnsweredAt.Year(), int(log.AnsweredAt.Month()), year, month) {
			continue
		}
		filtered = append(filtered, log)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].AnsweredAt.Before(filtered[j].AnsweredAt)
	})

	for _, log := range filtered {
		period := fmt.Sprintf("%d-%02d", log.AnsweredAt.Year(), int(log.AnsweredAt.Month()))
		ensurePeriodExists(stats, period)

		key := fmt.Sprintf("%s|%s|%s", log.ClassID, log.LessonID, log.QuestionID)
		data := stats[period]
		data.answers++
		data.totalTime += log.TimeTakenSeconds
		data.questions[key] = struct{}{}
		globalQuestions[key] = struct{}{}
		if log.Correct {
			data.correct++
			if log.WrongAttempts == 0 && !log.UsedSolution {
				data.firstTryUnique[key] = struct{}{}
				globalFirstTry[key] = struct{}{}
			}
		}
	}

	result := buildResult(stats, globalQuestions, globalFirstTry)
	if len(filtered) > 0 {
		result.Aggregate.RatingStart = filtered[0].RatingBefore
		result.Aggregate.RatingEnd = filtered[len(filtered)-1].RatingAfter
	}
	return result
}

func ensurePeriodExists(stats map[string]*periodData, period string) {
	if stats[period] == nil {
		stats[period] = &periodData{
			questions:      make(map[string]struct{}),
			firstTryUnique: make(map[string]struct{}),
		}
	}
}

func matchesFilter(logYear, logMonth, filterYear, filterMonth int) bool {
	if filterYear == 0 {
		return true
	}
	if logYear != filterYear {
		return false
	}
	if filterMonth == 0 {
		return true
	}
	return logMonth == filterMonth
}

func buildResult(stats map[string]*periodData, globalQuestions, globalFirstTry map[string]struct{}) StatisticsResult {
	periods := make([]PeriodStatistics, 0, len(stats))

	var totalAnswers, totalCorrect int
	for period, data := range stats {
		p := PeriodStatistics{
			Period:          period,
			AnswersCount:    data.answers,
			CorrectCount:    data.correct,
			QuestionsUnique: len(data.questions),
			FirstTryUnique:  len(data.firstTryUnique),
		}
		if data.answers > 0 {
			p.AvgTimeSeconds = data.totalTime / data.answers
		}
		periods = append(periods, p)
		totalAnswers += data.answers
		totalCorrect += data.correct
	}

	// newest first
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Period > periods[j].Period
	})

	return StatisticsResult{
		Periods: periods,
		Aggregate: AggregateStatistics{
			AnswersCount:    totalAnswers,
			CorrectCount:    totalCorrect,
			QuestionsUnique: len(globalQuestions),
			FirstTryUnique:  len(globalFirstTry),
		},
	}
}
