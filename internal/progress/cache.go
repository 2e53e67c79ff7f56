package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/at-ishikawa/pathtutor/internal/lesson"
)

// FileCache stores the last snapshot fetched for a learner and class.
type FileCache struct {
	rootDir string
}

func NewFileCache(cacheDirectory string) *FileCache {
	return &FileCache{
		rootDir: cacheDirectory,
	}
}

func (cache *FileCache) filePath(learnerID, classID string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_")
	return filepath.Join(cache.rootDir, replacer.Replace(learnerID)+"__"+replacer.Replace(classID)+".json")
}

func (cache *FileCache) write(learnerID, classID string, snapshot lesson.Snapshot) error {
	contents, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("json.Marshal > %w", err)
	}
	if err := os.MkdirAll(cache.rootDir, 0755); err != nil {
		return fmt.Errorf("os.MkdirAll > %w", err)
	}

	file, err := os.Create(cache.filePath(learnerID, classID))
	if err != nil {
		return fmt.Errorf("os.Create > %w", err)
	}
	defer func() {
		_ = file.Close()
	}()
	if _, err := file.Write(contents); err != nil {
		return fmt.Errorf("file.Write > %w", err)
	}
	return nil
}

func (cache *FileCache) read(learnerID, classID string) (lesson.Snapshot, error) {
	file, err := os.Open(cache.filePath(learnerID, classID))
	if err != nil {
		return lesson.Snapshot{}, fmt.Errorf("os.Open > %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	contents, err := io.ReadAll(file)
	if err != nil {
		return lesson.Snapshot{}, fmt.Errorf("io.ReadAll > %w", err)
	}
	var snapshot lesson.Snapshot
	if err := json.Unmarshal(contents, &snapshot); err != nil {
		return lesson.Snapshot{}, fmt.Errorf("json.Unmarshal > %w", err)
	}
	return snapshot, nil
}

// CachedClient serves the last good snapshot when the progress store cannot be reached.
// Writes always go to the store.
type CachedClient struct {
	Client
	cache *FileCache
}

func NewCachedClient(client Client, cache *FileCache) *CachedClient {
	return &CachedClient{Client: client, cache: cache}
}

func (c *CachedClient) FetchProgress(ctx context.Context, learnerID, classID string) (lesson.Snapshot, error) {
	snapshot, err := c.Client.FetchProgress(ctx, learnerID, classID)
	if err == nil {
		if cacheErr := c.cache.write(learnerID, classID, snapshot); cacheErr != nil {
			slog.Default().Warn("failed to cache progress snapshot", "learner", learnerID, "class", classID, "error", cacheErr)
		}
		return snapshot, nil
	}
	if !IsRetryable(err) {
		return lesson.Snapshot{}, err
	}

	cached, cacheErr := c.cache.read(learnerID, classID)
	if cacheErr != nil {
		return lesson.Snapshot{}, err
	}
	slog.Default().Warn("serving cached progress snapshot", "learner", learnerID, "class", classID, "error", err)
	cached.Stale = true
	return cached, nil
}
