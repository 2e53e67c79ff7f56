package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/at-ishikawa/pathtutor/internal/lesson"
)

// ResponseError is returned when the progress store answers with an error.
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("response error %d: %s", e.StatusCode, e.Message)
}

// HTTPClient implements Client over the progress store's JSON API.
type HTTPClient struct {
	httpClient       *resty.Client
	maxRetryAttempts uint
}

func NewHTTPClient(baseURL string, timeout time.Duration, retryAttempts uint) *HTTPClient {
	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(baseURL, "/"))
	client.SetHeader("Content-Type", "application/json")
	client.SetResponseBodyUnlimitedReads(true)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return &HTTPClient{
		httpClient:       client,
		maxRetryAttempts: retryAttempts,
	}
}

func (client *HTTPClient) Close() error {
	return client.httpClient.Close()
}

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type progressResponse struct {
	apiResponse
	Progress lesson.Snapshot `json:"progress"`
}

type completeLessonRequest struct {
	LearnerID string `json:"userid"`
	ClassID   string `json:"class_id"`
	LessonID  string `json:"lesson_id"`
}

// IsRetryable reports whether a failed call may succeed when sent again.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var responseErr *ResponseError
	if errors.As(err, &responseErr) {
		return responseErr.StatusCode >= http.StatusInternalServerError ||
			responseErr.StatusCode == http.StatusTooManyRequests
	}

	errStr := err.Error()
	// Network-related errors
	for _, s := range []string{"connection refused", "connection reset", "i/o timeout", "EOF", "no such host", "deadline exceeded"} {
		if strings.Contains(errStr, s) {
			return true
		}
	}
	return false
}

func (client *HTTPClient) do(ctx context.Context, name string, call func() error) error {
	return retry.Do(
		func() error {
			err := call()
			if err != nil {
				if !IsRetryable(err) {
					return retry.Unrecoverable(err)
				}
				slog.Default().Debug("retrying progress store call", "call", name, "error", err)
				return err
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	)
}

func responseError(response *resty.Response) error {
	var body apiResponse
	message := response.String()
	if err := json.Unmarshal(response.Bytes(), &body); err == nil && body.Message != "" {
		message = body.Message
	}
	return &ResponseError{StatusCode: response.StatusCode(), Message: message}
}

func (client *HTTPClient) FetchProgress(ctx context.Context, learnerID, classID string) (lesson.Snapshot, error) {
	var result lesson.Snapshot
	err := client.do(ctx, "FetchProgress", func() error {
		response, err := client.httpClient.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"userid":   learnerID,
				"class_id": classID,
			}).
			SetResult(&progressResponse{}).
			Get("/student/get-progress")
		if err != nil {
			return fmt.Errorf("httpClient.Get > %w", err)
		}
		if response.IsError() {
			return responseError(response)
		}

		body := response.Result().(*progressResponse)
		if !body.Success {
			return &ResponseError{StatusCode: response.StatusCode(), Message: body.Message}
		}
		result = body.Progress
		return nil
	})
	if err != nil {
		return lesson.Snapshot{}, err
	}
	return result, nil
}

func (client *HTTPClient) SubmitAnswer(ctx context.Context, submission AnswerSubmission) error {
	return client.do(ctx, "SubmitAnswer", func() error {
		response, err := client.httpClient.R().
			SetContext(ctx).
			SetBody(submission).
			SetResult(&apiResponse{}).
			Post("/student/update-question")
		if err != nil {
			return fmt.Errorf("httpClient.Post > %w", err)
		}
		if response.IsError() {
			return responseError(response)
		}
		if body := response.Result().(*apiResponse); !body.Success {
			return &ResponseError{StatusCode: response.StatusCode(), Message: body.Message}
		}
		return nil
	})
}

func (client *HTTPClient) CompleteLesson(ctx context.Context, learnerID, classID, lessonID string) (CompleteResult, error) {
	var result CompleteResult
	err := client.do(ctx, "CompleteLesson", func() error {
		response, err := client.httpClient.R().
			SetContext(ctx).
			SetBody(completeLessonRequest{
				LearnerID: learnerID,
				ClassID:   classID,
				LessonID:  lessonID,
			}).
			SetResult(&CompleteResult{}).
			Post("/student/complete-lesson")
		if err != nil {
			return fmt.Errorf("httpClient.Post > %w", err)
		}
		if response.IsError() {
			return responseError(response)
		}
		body := response.Result().(*CompleteResult)
		if !body.Success {
			return &ResponseError{StatusCode: response.StatusCode(), Message: body.Message}
		}
		result = *body
		return nil
	})
	if err != nil {
		return CompleteResult{}, err
	}
	return result, nil
}
