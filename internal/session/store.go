package session

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/at-ishikawa/pathtutor/internal/config"
)

// NewStore builds the store selected by configuration.
// db and redisClient may be nil when the store kind does not need them.
func NewStore(cfg config.Config, db *sqlx.DB, redisClient *redis.Client) (Store, error) {
	switch cfg.Session.Store {
	case "yaml", "":
		return NewYAMLStore(cfg.Session.Directory), nil
	case "database":
		if db == nil {
			return nil, fmt.Errorf("session store %q requires a database connection", cfg.Session.Store)
		}
		return NewDBStore(db), nil
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("session store %q requires a redis client", cfg.Session.Store)
		}
		return NewRedisStore(redisClient, cfg.Redis.KeyPrefix, time.Duration(cfg.Redis.TTLSeconds)*time.Second), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
