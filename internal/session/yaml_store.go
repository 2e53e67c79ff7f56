package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLStore keeps one YAML file per learner in a directory.
type YAMLStore struct {
	directory string
}

func NewYAMLStore(directory string) *YAMLStore {
	return &YAMLStore{directory: directory}
}

func (s *YAMLStore) path(learnerID string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(learnerID)
	return filepath.Join(s.directory, name+".yml")
}

func (s *YAMLStore) Load(_ context.Context, learnerID string) (*Context, error) {
	file, err := os.Open(s.path(learnerID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("os.Open(%s)> %w", s.path(learnerID), err)
	}
	defer func() {
		_ = file.Close()
	}()

	var c Context
	if err := yaml.NewDecoder(file).Decode(&c); err != nil {
		return nil, fmt.Errorf("yaml.NewDecoder().Decode()> %w", err)
	}
	return &c, nil
}

// Save writes to a temporary file first so a crash never leaves a truncated session.
func (s *YAMLStore) Save(_ context.Context, c *Context) error {
	if err := os.MkdirAll(s.directory, 0755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s)> %w", s.directory, err)
	}

	path := s.path(c.LearnerID)
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("os.Create(%s)> %w", tmp, err)
	}

	enc := yaml.NewEncoder(file)
	if err := enc.Encode(c); err != nil {
		_ = file.Close()
		return fmt.Errorf("yaml.NewEncoder().Encode()> %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = file.Close()
		return fmt.Errorf("enc.Close()> %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("file.Close()> %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("os.Rename(%s)> %w", path, err)
	}
	return nil
}

func (s *YAMLStore) Delete(_ context.Context, learnerID string) error {
	if err := os.Remove(s.path(learnerID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("os.Remove(%s)> %w", s.path(learnerID), err)
	}
	return nil
}
