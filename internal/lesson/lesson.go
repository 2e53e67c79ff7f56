package lesson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/at-ishikawa/pathtutor/internal/rating"
)

type Tier string

const (
	TierEasy   Tier = "easy"
	TierMedium Tier = "medium"
	TierHard   Tier = "hard"
)

// Tiers is the fixed order in which a lesson's question bank is traversed.
var Tiers = []Tier{TierEasy, TierMedium, TierHard}

func (t Tier) String() string {
	return string(t)
}

// Question is immutable reference data owned by a lesson.
// Correct and TimeTaken are the last recorded result reported by the progress store.
type Question struct {
	ID               string   `json:"id" yaml:"id"`
	Content          string   `json:"content" yaml:"content"`
	Solution         string   `json:"solution" yaml:"solution"`
	SolutionFeedback string   `json:"solution_feedback,omitempty" yaml:"solution_feedback,omitempty"`
	Hints            []string `json:"hints,omitempty" yaml:"hints,omitempty"`
	Rating           int      `json:"rating,omitempty" yaml:"rating,omitempty"`
	Correct          *bool    `json:"correct,omitempty" yaml:"correct,omitempty"`
	TimeTaken        *int     `json:"time_taken,omitempty" yaml:"time_taken,omitempty"`
}

func (q Question) EffectiveRating() int {
	if q.Rating <= 0 {
		return rating.DefaultQuestionRating
	}
	return q.Rating
}

// IsCorrectAnswer compares trimmed answers case-insensitively.
func (q Question) IsCorrectAnswer(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(q.Solution))
}

type Questions struct {
	Easy   []Question `json:"easy" yaml:"easy"`
	Medium []Question `json:"medium" yaml:"medium"`
	Hard   []Question `json:"hard" yaml:"hard"`
}

func (qs Questions) ByTier(tier Tier) []Question {
	switch tier {
	case TierEasy:
		return qs.Easy
	case TierMedium:
		return qs.Medium
	case TierHard:
		return qs.Hard
	}
	return nil
}

func (qs Questions) Len() int {
	return len(qs.Easy) + len(qs.Medium) + len(qs.Hard)
}

// Lesson mirrors the progress store's lesson snapshot.
// Unlocked and Completed are nil when the store omits them.
type Lesson struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Unlocked  *bool     `json:"unlocked,omitempty" yaml:"unlocked,omitempty"`
	Completed *bool     `json:"completed,omitempty" yaml:"completed,omitempty"`
	Questions Questions `json:"questions" yaml:"questions"`
}

// Snapshot is the progress store's view of all lessons of a learner in a class.
// Order keeps the lesson order the store sent.
type Snapshot struct {
	Lessons map[string]Lesson `json:"lessons"`
	Order   []string          `json:"-"`
	// Stale is set when the snapshot was served from a local cache.
	Stale bool `json:"-"`
}

// Keys returns lesson keys in the store's order.
// Keys missing from Order follow in lexical order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.Lessons))
	seen := make(map[string]bool, len(s.Lessons))
	for _, key := range s.Order {
		if _, ok := s.Lessons[key]; !ok || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	var rest []string
	for key := range s.Lessons {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// OrderedLessons returns lessons in the store's order.
func (s Snapshot) OrderedLessons() []Lesson {
	keys := s.Keys()
	result := make([]Lesson, 0, len(keys))
	for _, key := range keys {
		result = append(result, s.Lessons[key])
	}
	return result
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw struct {
		Lessons json.RawMessage `json:"lessons"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("json.Unmarshal(snapshot) > %w", err)
	}

	s.Lessons = make(map[string]Lesson)
	s.Order = nil
	if len(raw.Lessons) == 0 || string(raw.Lessons) == "null" {
		return nil
	}

	decoder := json.NewDecoder(bytes.NewReader(raw.Lessons))
	token, err := decoder.Token()
	if err != nil {
		return fmt.Errorf("decoder.Token() > %w", err)
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("lessons must be an object, got %v", token)
	}
	for decoder.More() {
		keyToken, err := decoder.Token()
		if err != nil {
			return fmt.Errorf("decoder.Token() > %w", err)
		}
		key, _ := keyToken.(string)

		var l Lesson
		if err := decoder.Decode(&l); err != nil {
			return fmt.Errorf("decoder.Decode(lesson %s) > %w", key, err)
		}
		if l.ID == "" {
			l.ID = key
		}
		if _, ok := s.Lessons[key]; !ok {
			s.Order = append(s.Order, key)
		}
		s.Lessons[key] = l
	}
	return nil
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"lessons":{`)
	for i, k := range s.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		l := s.Lessons[k]
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(l)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteString(`}}`)
	return buf.Bytes(), nil
}

// NewSnapshot keys lessons by id in the given order.
func NewSnapshot(lessons ...Lesson) Snapshot {
	s := Snapshot{Lessons: make(map[string]Lesson, len(lessons))}
	for _, l := range lessons {
		if _, ok := s.Lessons[l.ID]; !ok {
			s.Order = append(s.Order, l.ID)
		}
		s.Lessons[l.ID] = l
	}
	return s
}
