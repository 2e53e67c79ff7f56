package learning

import "time"

// AnswerLog records one graded answer of a learner.
type AnswerLog struct {
	ID               int64     `db:"id" yaml:"id"`
	SessionID        string    `db:"session_id" yaml:"session_id"`
	LearnerID        string    `db:"learner_id" yaml:"learner_id"`
	ClassID          string    `db:"class_id" yaml:"class_id"`
	LessonID         string    `db:"lesson_id" yaml:"lesson_id"`
	QuestionID       string    `db:"question_id" yaml:"question_id"`
	Difficulty       string    `db:"difficulty" yaml:"difficulty"`
	Correct          bool      `db:"correct" yaml:"correct"`
	UsedSolution     bool      `db:"used_solution" yaml:"used_solution"`
	WrongAttempts    int       `db:"wrong_attempts" yaml:"wrong_attempts"`
	TimeTakenSeconds int       `db:"time_taken_seconds" yaml:"time_taken_seconds"`
	RatingBefore     int       `db:"rating_before" yaml:"rating_before"`
	RatingAfter      int       `db:"rating_after" yaml:"rating_after"`
	AnsweredAt       time.Time `db:"answered_at" yaml:"answered_at"`
}
