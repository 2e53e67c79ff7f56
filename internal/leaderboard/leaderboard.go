package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type Entry struct {
	UserID   string `json:"userid"`
	Username string `json:"username"`
	Points   int    `json:"points"`
}

type response struct {
	Success     bool    `json:"success"`
	Message     string  `json:"message"`
	Leaderboard []Entry `json:"leaderboard"`
}

// Reader fetches class leaderboards from the progress store.
type Reader struct {
	client *resty.Client
}

func NewReader(baseURL string, timeout time.Duration) *Reader {
	client := resty.New().SetBaseURL(strings.TrimSuffix(baseURL, "/"))
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &Reader{client: client}
}

// Fetch returns the class leaderboard ordered by points, highest first.
func (r *Reader) Fetch(ctx context.Context, classID string) ([]Entry, error) {
	res, err := r.client.R().
		SetContext(ctx).
		SetQueryParam("class_id", classID).
		Get("/leaderboard")
	if err != nil {
		return nil, fmt.Errorf("client.R.Get > %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("status code: %d, body: %s", res.StatusCode(), string(res.Body()))
	}

	var body response
	if err := json.Unmarshal(res.Body(), &body); err != nil {
		return nil, fmt.Errorf("json.Unmarshal > %w", err)
	}
	if !body.Success {
		return nil, fmt.Errorf("leaderboard for class %s: %s", classID, body.Message)
	}

	entries := body.Leaderboard
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].Username < entries[j].Username
	})
	return entries, nil
}

// Show prints a ranked table. The row of highlightUserID is marked.
func Show(output io.Writer, entries []Entry, highlightUserID string) {
	for i, entry := range entries {
		marker := " "
		if entry.UserID == highlightUserID {
			marker = "*"
		}
		_, _ = fmt.Fprintf(output, "%s%3d. %-24s %6d\n", marker, i+1, entry.Username, entry.Points)
	}
}
