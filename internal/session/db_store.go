package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/pathtutor/internal/database"
)

// DBStore keeps contexts in the sessions table.
type DBStore struct {
	db *sqlx.DB
}

func NewDBStore(db *sqlx.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Load(ctx context.Context, learnerID string) (*Context, error) {
	var c Context
	err := s.db.GetContext(ctx, &c,
		`SELECT session_id, learner_id, class_id, role, rating, streak, difficulty, selected_lesson_id, updated_at
		FROM sessions WHERE learner_id = ?`, learnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(sessions) > %w", err)
	}
	return &c, nil
}

// Save replaces the learner's row in one transaction, which both drivers support.
func (s *DBStore) Save(ctx context.Context, c *Context) error {
	return database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE learner_id = ?", c.LearnerID); err != nil {
			return fmt.Errorf("tx.ExecContext(delete session) > %w", err)
		}
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO sessions (learner_id, session_id, class_id, role, rating, streak, difficulty, selected_lesson_id, updated_at)
			VALUES (:learner_id, :session_id, :class_id, :role, :rating, :streak, :difficulty, :selected_lesson_id, :updated_at)`, c); err != nil {
			return fmt.Errorf("tx.NamedExecContext(insert session) > %w", err)
		}
		return nil
	})
}

func (s *DBStore) Delete(ctx context.Context, learnerID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE learner_id = ?", learnerID); err != nil {
		return fmt.Errorf("db.ExecContext(delete session) > %w", err)
	}
	return nil
}
