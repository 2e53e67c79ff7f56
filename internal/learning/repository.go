// Package learning stores the local history of graded answers.
package learning

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/pathtutor/internal/database"
)

var answerLogColumns = []string{
	"session_id", "learner_id", "class_id", "lesson_id", "question_id", "difficulty",
	"correct", "used_solution", "wrong_attempts", "time_taken_seconds",
	"rating_before", "rating_after", "answered_at",
}

// AnswerLogRepository defines operations for managing answer logs.
type AnswerLogRepository interface {
	Create(ctx context.Context, log *AnswerLog) error
	BatchCreate(ctx context.Context, logs []*AnswerLog) error
	FindByLearner(ctx context.Context, learnerID string, limit int) ([]AnswerLog, error)
}

// DBAnswerLogRepository implements AnswerLogRepository on SQLite or MySQL.
type DBAnswerLogRepository struct {
	db *sqlx.DB
}

func NewDBAnswerLogRepository(db *sqlx.DB) *DBAnswerLogRepository {
	return &DBAnswerLogRepository{db: db}
}

func (l *AnswerLog) args() []interface{} {
	return []interface{}{
		l.SessionID, l.LearnerID, l.ClassID, l.LessonID, l.QuestionID, l.Difficulty,
		l.Correct, l.UsedSolution, l.WrongAttempts, l.TimeTakenSeconds,
		l.RatingBefore, l.RatingAfter, l.AnsweredAt,
	}
}

// Create inserts a new answer log.
func (r *DBAnswerLogRepository) Create(ctx context.Context, log *AnswerLog) error {
	query := database.BuildMultiRowInsert("answer_logs", answerLogColumns, 1)
	result, err := r.db.ExecContext(ctx, query, log.args()...)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert answer_log) > %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	log.ID = id
	return nil
}

// BatchCreate inserts multiple answer logs in a single transaction using a multi-row INSERT.
func (r *DBAnswerLogRepository) BatchCreate(ctx context.Context, logs []*AnswerLog) error {
	if len(logs) == 0 {
		return nil
	}

	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		query := database.BuildMultiRowInsert("answer_logs", answerLogColumns, len(logs))

		var args []interface{}
		for _, l := range logs {
			args = append(args, l.args()...)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert answer logs: %w", err)
		}
		return nil
	})
}

// FindByLearner returns the latest answer logs of a learner, newest first.
func (r *DBAnswerLogRepository) FindByLearner(ctx context.Context, learnerID string, limit int) ([]AnswerLog, error) {
	var logs []AnswerLog
	if err := r.db.SelectContext(ctx, &logs,
		"SELECT * FROM answer_logs WHERE learner_id = ? ORDER BY answered_at DESC, id DESC LIMIT ?",
		learnerID, limit); err != nil {
		return nil, fmt.Errorf("db.SelectContext(answer_logs) > %w", err)
	}
	return logs, nil
}
