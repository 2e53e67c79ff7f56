package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/at-ishikawa/pathtutor/internal/config"
	"github.com/at-ishikawa/pathtutor/internal/database"
	"github.com/at-ishikawa/pathtutor/internal/learning"
	"github.com/at-ishikawa/pathtutor/internal/progress"
	"github.com/at-ishikawa/pathtutor/internal/session"
	"github.com/at-ishikawa/pathtutor/internal/tutor"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if learnerID != "" {
		cfg.Learner.UserID = learnerID
	}
	if classID != "" {
		cfg.Learner.ClassID = classID
	}
	return cfg, nil
}

// loadLearnerConfig loads the configuration of commands that act for one learner in one class.
func loadLearnerConfig() (*config.Config, session.Role, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", err
	}
	if cfg.Learner.UserID == "" || cfg.Learner.ClassID == "" {
		return nil, "", errors.New("a learner and a class are required: set learner.user_id and learner.class_id, PATHTUTOR_USER_ID and PATHTUTOR_CLASS_ID, or --learner and --class")
	}
	role, err := session.ParseRole(cfg.Learner.Role)
	if err != nil {
		return nil, "", fmt.Errorf("session.ParseRole() > %w", err)
	}
	return cfg, role, nil
}

func newProgressClient(cfg *config.Config) (*progress.CachedClient, func() error) {
	httpClient := progress.NewHTTPClient(
		cfg.Progress.BaseURL,
		time.Duration(cfg.Progress.TimeoutSeconds)*time.Second,
		cfg.Progress.RetryAttempts,
	)
	return progress.NewCachedClient(httpClient, progress.NewFileCache(cfg.Progress.CacheDirectory)), httpClient.Close
}

// environment holds the connections a learner command needs.
type environment struct {
	cfg        *config.Config
	progress   progress.Client
	sessions   session.Store
	answerLogs learning.AnswerLogRepository
	closers    []func() error
}

func openEnvironment(ctx context.Context, cfg *config.Config) (env *environment, err error) {
	env = &environment{cfg: cfg}
	defer func() {
		if err != nil {
			_ = env.Close()
		}
	}()

	client, closeClient := newProgressClient(cfg)
	env.progress = client
	env.closers = append(env.closers, closeClient)

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database.Open() > %w", err)
	}
	env.closers = append(env.closers, db.Close)
	if err := database.Migrate(ctx, db); err != nil {
		return nil, fmt.Errorf("database.Migrate() > %w", err)
	}
	env.answerLogs = learning.NewDBAnswerLogRepository(db)

	var redisClient *redis.Client
	if cfg.Session.Store == "redis" {
		redisClient = session.NewRedisClient(cfg.Redis)
		env.closers = append(env.closers, redisClient.Close)
	}
	env.sessions, err = session.NewStore(*cfg, db, redisClient)
	if err != nil {
		return nil, fmt.Errorf("session.NewStore() > %w", err)
	}
	return env, nil
}

func (env *environment) factory() *tutor.Factory {
	return &tutor.Factory{
		Progress:    env.progress,
		Sessions:    env.sessions,
		AnswerLogs:  env.answerLogs,
		AutoAdvance: env.cfg.Learner.AutoAdvance,
	}
}

func (env *environment) Close() error {
	var errs []error
	for i := len(env.closers) - 1; i >= 0; i-- {
		if err := env.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	env.closers = nil
	return errors.Join(errs...)
}
