package rating

import "math"

const (
	// MinRating is the floor every learner rating is clamped to.
	MinRating = 200
	// DefaultRating is the starting skill estimate of a new learner.
	DefaultRating = 1100
	// DefaultQuestionRating is used for questions that carry no rating.
	DefaultQuestionRating = 1100
)

// Expected returns the probability that a learner rated ru answers a
// question rated rq correctly.
func Expected(ru, rq int) float64 {
	return 1 / (1 + math.Pow(10, float64(rq-ru)/400))
}

// KFactor moves the learner faster against higher rated questions.
func KFactor(rq int) float64 {
	switch {
	case rq >= 1500:
		return 48
	case rq >= 1100:
		return 36
	default:
		return 28
	}
}

// StreakMultiplier scales the delta by the number of consecutive correct answers.
// It applies to both gains and losses.
func StreakMultiplier(streak int) float64 {
	switch {
	case streak >= 8:
		return 1.5
	case streak >= 5:
		return 1.25
	case streak >= 3:
		return 1.1
	default:
		return 1.0
	}
}

// Delta is the unrounded rating change for one answer.
// streak is the learner's streak before the answer is applied.
func Delta(ru, rq int, correct bool, streak int) float64 {
	if rq <= 0 {
		rq = DefaultQuestionRating
	}
	score := 0.0
	if correct {
		score = 1.0
	}
	return KFactor(rq) * (score - Expected(ru, rq)) * StreakMultiplier(streak)
}

// Update returns the learner rating after answering a question rated rq.
func Update(ru, rq int, correct bool, streak int) int {
	next := math.Round(float64(ru) + Delta(ru, rq, correct, streak))
	return int(math.Max(next, MinRating))
}
