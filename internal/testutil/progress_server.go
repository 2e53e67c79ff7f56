package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/at-ishikawa/pathtutor/internal/lesson"
	"github.com/at-ishikawa/pathtutor/internal/progress"
)

// ProgressServer is an in-memory progress store for one class.
// Completing a lesson unlocks the next lesson in order.
type ProgressServer struct {
	*httptest.Server

	mu          sync.Mutex
	snapshot    lesson.Snapshot
	submissions []progress.AnswerSubmission
	leaderboard []map[string]any
}

// NewProgressServer starts a server that is closed when the test ends.
func NewProgressServer(t *testing.T, lessons ...lesson.Lesson) *ProgressServer {
	t.Helper()
	s := &ProgressServer{snapshot: lesson.NewSnapshot(lessons...)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /student/get-progress", s.getProgress)
	mux.HandleFunc("POST /student/update-question", s.updateQuestion)
	mux.HandleFunc("POST /student/complete-lesson", s.completeLesson)
	mux.HandleFunc("GET /leaderboard", s.getLeaderboard)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// SetLeaderboard replaces the leaderboard served for every class.
func (s *ProgressServer) SetLeaderboard(entries ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaderboard = entries
}

func (s *ProgressServer) Submissions() []progress.AnswerSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]progress.AnswerSubmission(nil), s.submissions...)
}

func (s *ProgressServer) Lesson(id string) lesson.Lesson {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Lessons[id]
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *ProgressServer) getProgress(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("userid") == "" || r.URL.Query().Get("class_id") == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "userid and class_id are required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "progress": s.snapshot})
}

func (s *ProgressServer) updateQuestion(w http.ResponseWriter, r *http.Request) {
	var submission progress.AnswerSubmission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions = append(s.submissions, submission)
	l, ok := s.snapshot.Lessons[submission.LessonID]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "lesson not found"})
		return
	}
	for _, tier := range lesson.Tiers {
		questions := l.Questions.ByTier(tier)
		for i := range questions {
			if questions[i].ID == submission.QuestionID {
				correct := submission.Correct
				timeTaken := submission.TimeTaken
				questions[i].Correct = &correct
				questions[i].TimeTaken = &timeTaken
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Question updated"})
}

func (s *ProgressServer) completeLesson(w http.ResponseWriter, r *http.Request) {
	var body struct {
		LessonID string `json:"lesson_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.snapshot.Lessons[body.LessonID]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "lesson not found"})
		return
	}
	completed := true
	l.Completed = &completed
	s.snapshot.Lessons[l.ID] = l

	result := progress.CompleteResult{Success: true, Message: "Lesson completed", CompletedLesson: l.ID}
	keys := s.snapshot.Keys()
	for i, key := range keys {
		if key != l.ID || i+1 >= len(keys) {
			continue
		}
		next := s.snapshot.Lessons[keys[i+1]]
		unlocked := true
		next.Unlocked = &unlocked
		s.snapshot.Lessons[next.ID] = next
		result.UnlockedLesson = next.ID
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *ProgressServer) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.leaderboard
	if entries == nil {
		entries = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "leaderboard": entries})
}
