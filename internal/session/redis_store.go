package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares contexts between server instances.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore stores contexts under prefix+learnerID. A zero ttl keeps keys forever.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(learnerID string) string {
	return s.prefix + learnerID
}

func (s *RedisStore) Load(ctx context.Context, learnerID string) (*Context, error) {
	data, err := s.client.Get(ctx, s.key(learnerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis.Get(%s) > %w", s.key(learnerID), err)
	}

	var c Context
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("json.Unmarshal(session) > %w", err)
	}
	return &c, nil
}

func (s *RedisStore) Save(ctx context.Context, c *Context) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("json.Marshal(session) > %w", err)
	}
	if err := s.client.Set(ctx, s.key(c.LearnerID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis.Set(%s) > %w", s.key(c.LearnerID), err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, learnerID string) error {
	if err := s.client.Del(ctx, s.key(learnerID)).Err(); err != nil {
		return fmt.Errorf("redis.Del(%s) > %w", s.key(learnerID), err)
	}
	return nil
}
