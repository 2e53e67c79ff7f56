package lesson

import "fmt"

// ValidationError points at one problem in a lesson snapshot.
type ValidationError struct {
	LessonID   string
	QuestionID string
	Message    string
}

func (e ValidationError) Error() string {
	if e.QuestionID == "" {
		return fmt.Sprintf("%s: %s", e.LessonID, e.Message)
	}
	return fmt.Sprintf("%s/%s: %s", e.LessonID, e.QuestionID, e.Message)
}

// Validate reports question data a learner could not practice with.
// Duplicate ids within a lesson are reported once per extra occurrence.
func Validate(s Snapshot) []ValidationError {
	var errs []ValidationError
	for _, l := range s.OrderedLessons() {
		if l.Questions.Len() == 0 {
			errs = append(errs, ValidationError{LessonID: l.ID, Message: "lesson has no questions"})
			continue
		}
		seen := make(map[string]Tier)
		for _, tier := range Tiers {
			for _, q := range l.Questions.ByTier(tier) {
				switch {
				case q.ID == "":
					errs = append(errs, ValidationError{LessonID: l.ID, Message: fmt.Sprintf("%s question without id", tier)})
					continue
				case q.Solution == "":
					errs = append(errs, ValidationError{LessonID: l.ID, QuestionID: q.ID, Message: "solution is empty"})
				case q.Rating < 0:
					errs = append(errs, ValidationError{LessonID: l.ID, QuestionID: q.ID, Message: fmt.Sprintf("rating %d is negative", q.Rating)})
				}
				if first, ok := seen[q.ID]; ok {
					errs = append(errs, ValidationError{LessonID: l.ID, QuestionID: q.ID, Message: fmt.Sprintf("duplicate id, first seen in %s", first)})
					continue
				}
				seen[q.ID] = tier
			}
		}
	}
	return errs
}
