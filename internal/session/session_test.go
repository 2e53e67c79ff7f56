package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/pathtutor/internal/config"
	"github.com/at-ishikawa/pathtutor/internal/database"
	"github.com/at-ishikawa/pathtutor/internal/lesson"
)

func newStores(t *testing.T) map[string]Store {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]Store{
		"yaml":     NewYAMLStore(t.TempDir()),
		"database": NewDBStore(db),
		"redis":    NewRedisStore(client, "test:session:", time.Hour),
	}
}

func TestStores(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Load(ctx, "u-1")
			assert.ErrorIs(t, err, ErrNotFound)

			updatedAt := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
			saved := &Context{
				ID:               "2f1c7f0e-5a7e-4d4b-9d55-8f2a9d7a1c11",
				LearnerID:        "u-1",
				ClassID:          "c-1",
				Role:             RoleStudent,
				Rating:           1234,
				Streak:           3,
				Difficulty:       lesson.TierMedium,
				SelectedLessonID: "lesson_2",
				UpdatedAt:        updatedAt,
			}
			require.NoError(t, store.Save(ctx, saved))

			saved.Rating = 1250
			require.NoError(t, store.Save(ctx, saved), "saving twice replaces the context")

			got, err := store.Load(ctx, "u-1")
			require.NoError(t, err)
			assert.True(t, updatedAt.Equal(got.UpdatedAt))
			got.UpdatedAt = saved.UpdatedAt
			assert.Equal(t, saved, got)

			require.NoError(t, store.Delete(ctx, "u-1"))
			_, err = store.Load(ctx, "u-1")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.NoError(t, store.Delete(ctx, "u-1"))
		})
	}
}

func TestLoadOrNew(t *testing.T) {
	ctx := context.Background()
	store := NewYAMLStore(t.TempDir())

	fresh, err := LoadOrNew(ctx, store, "u-1", "c-1", RoleStudent)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.ID)
	assert.Equal(t, 1100, fresh.Rating)
	assert.Equal(t, lesson.TierEasy, fresh.Difficulty)

	fresh.Rating = 1300
	fresh.SelectedLessonID = "lesson_3"
	require.NoError(t, store.Save(ctx, fresh))

	t.Run("same class restores the selected lesson", func(t *testing.T) {
		got, err := LoadOrNew(ctx, store, "u-1", "c-1", RoleStudent)
		require.NoError(t, err)
		assert.Equal(t, fresh.ID, got.ID)
		assert.Equal(t, 1300, got.Rating)
		assert.Equal(t, "lesson_3", got.SelectedLessonID)
	})

	t.Run("another class keeps the rating only", func(t *testing.T) {
		got, err := LoadOrNew(ctx, store, "u-1", "c-2", RoleStudent)
		require.NoError(t, err)
		assert.Equal(t, 1300, got.Rating)
		assert.Empty(t, got.SelectedLessonID)
		assert.Equal(t, "c-2", got.ClassID)
	})
}

func TestContext_Normalize(t *testing.T) {
	c := &Context{LearnerID: "u-1", Rating: 50, Streak: -2}
	c.Normalize()

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, 1100, c.Rating)
	assert.Equal(t, 0, c.Streak)
	assert.Equal(t, lesson.TierEasy, c.Difficulty)
	assert.Equal(t, RoleStudent, c.Role)
}

func TestContext_ResetRating(t *testing.T) {
	c := &Context{LearnerID: "u-1", Rating: 1420, Streak: 4, Difficulty: lesson.TierHard}
	c.ResetRating()

	assert.Equal(t, 1100, c.Rating)
	assert.Equal(t, 0, c.Streak)
	assert.Equal(t, lesson.TierEasy, c.Difficulty)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("parent")
	require.NoError(t, err)
	assert.True(t, role.IsObserver())
	assert.False(t, RoleStudent.IsObserver())

	_, err = ParseRole("admin")
	assert.Error(t, err)
}

func TestNewStore(t *testing.T) {
	cfg := config.Config{Session: config.SessionConfig{Store: "yaml", Directory: t.TempDir()}}
	store, err := NewStore(cfg, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &YAMLStore{}, store)

	cfg.Session.Store = "database"
	_, err = NewStore(cfg, nil, nil)
	assert.Error(t, err)

	cfg.Session.Store = "redis"
	_, err = NewStore(cfg, nil, nil)
	assert.Error(t, err)

	cfg.Session.Store = "etcd"
	_, err = NewStore(cfg, nil, nil)
	assert.Error(t, err)
}
