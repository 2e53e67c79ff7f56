// Package session holds the per-learner context that survives reloads.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/at-ishikawa/pathtutor/internal/lesson"
	"github.com/at-ishikawa/pathtutor/internal/rating"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleParent  Role = "parent"
)

func (r Role) IsObserver() bool {
	return r != RoleStudent
}

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleTeacher, RoleParent:
		return Role(s), nil
	}
	return "", errors.New("role must be one of student, teacher, parent")
}

// Context is the explicit state a learner session carries between answers.
// It is read and written only at session boundaries through a Store.
type Context struct {
	ID               string      `json:"id" yaml:"id" db:"session_id"`
	LearnerID        string      `json:"learner_id" yaml:"learner_id" db:"learner_id"`
	ClassID          string      `json:"class_id" yaml:"class_id" db:"class_id"`
	Role             Role        `json:"role" yaml:"role" db:"role"`
	Rating           int         `json:"rating" yaml:"rating" db:"rating"`
	Streak           int         `json:"streak" yaml:"streak" db:"streak"`
	Difficulty       lesson.Tier `json:"difficulty" yaml:"difficulty" db:"difficulty"`
	SelectedLessonID string      `json:"selected_lesson_id,omitempty" yaml:"selected_lesson_id,omitempty" db:"selected_lesson_id"`
	UpdatedAt        time.Time   `json:"updated_at" yaml:"updated_at" db:"updated_at"`
}

// New returns a fresh context with the default rating.
func New(learnerID, classID string, role Role) *Context {
	return &Context{
		ID:         uuid.NewString(),
		LearnerID:  learnerID,
		ClassID:    classID,
		Role:       role,
		Rating:     rating.DefaultRating,
		Difficulty: lesson.TierEasy,
	}
}

// Normalize repairs values a store may return empty or out of range.
func (c *Context) Normalize() {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Rating < rating.MinRating {
		c.Rating = rating.DefaultRating
	}
	if c.Streak < 0 {
		c.Streak = 0
	}
	if c.Difficulty == "" {
		c.Difficulty = lesson.TierEasy
	}
	if c.Role == "" {
		c.Role = RoleStudent
	}
}

// ResetRating puts the learner back at the default rating.
func (c *Context) ResetRating() {
	c.Rating = rating.DefaultRating
	c.Streak = 0
	c.Difficulty = lesson.TierEasy
}

// Store persists contexts keyed by learner id.
type Store interface {
	// Load returns ErrNotFound when nothing was saved for the learner.
	Load(ctx context.Context, learnerID string) (*Context, error)
	Save(ctx context.Context, c *Context) error
	Delete(ctx context.Context, learnerID string) error
}

var ErrNotFound = errors.New("session not found")

// LoadOrNew loads a learner's context, starting a new one when none was saved.
func LoadOrNew(ctx context.Context, store Store, learnerID, classID string, role Role) (*Context, error) {
	c, err := store.Load(ctx, learnerID)
	if errors.Is(err, ErrNotFound) {
		return New(learnerID, classID, role), nil
	}
	if err != nil {
		return nil, err
	}
	c.Normalize()
	if c.ClassID != classID {
		c.SelectedLessonID = ""
	}
	c.ClassID = classID
	c.Role = role
	return c, nil
}
