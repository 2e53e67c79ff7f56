package lesson

// TierWeight is the number of leaderboard points a correct answer earns.
func TierWeight(tier Tier) int {
	switch tier {
	case TierEasy:
		return 1
	case TierMedium:
		return 2
	default:
		return 3
	}
}

func LessonPoints(l Lesson) int {
	points := 0
	for _, tier := range Tiers {
		for _, q := range l.Questions.ByTier(tier) {
			if q.Correct != nil && *q.Correct {
				points += TierWeight(tier)
			}
		}
	}
	return points
}

func Points(s Snapshot) int {
	points := 0
	for _, l := range s.Lessons {
		points += LessonPoints(l)
	}
	return points
}
