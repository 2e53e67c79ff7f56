package lesson

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool {
	return &b
}

func q(id string) Question {
	return Question{ID: id, Content: "question " + id, Solution: "42"}
}

func TestBuildPath(t *testing.T) {
	tests := []struct {
		name   string
		lesson Lesson
		want   Path
	}{
		{
			name: "duplicate id across tiers keeps first occurrence",
			lesson: Lesson{ID: "l1", Questions: Questions{
				Easy:   []Question{q("A"), q("B")},
				Medium: []Question{q("B"), q("C")},
				Hard:   []Question{q("D")},
			}},
			want: Path{
				{QuestionID: "A", Tier: TierEasy},
				{QuestionID: "B", Tier: TierEasy},
				{QuestionID: "C", Tier: TierMedium},
				{QuestionID: "D", Tier: TierHard},
			},
		},
		{
			name: "tiers are visited in fixed order",
			lesson: Lesson{ID: "l1", Questions: Questions{
				Hard:   []Question{q("H1")},
				Medium: []Question{q("M1"), q("M2")},
			}},
			want: Path{
				{QuestionID: "M1", Tier: TierMedium},
				{QuestionID: "M2", Tier: TierMedium},
				{QuestionID: "H1", Tier: TierHard},
			},
		},
		{
			name:   "empty lesson",
			lesson: Lesson{ID: "l1"},
			want:   Path{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildPath(tt.lesson)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, BuildPath(tt.lesson))
		})
	}
}

func TestPath_At(t *testing.T) {
	path := Path{{QuestionID: "A", Tier: TierEasy}}

	item, ok := path.At(0)
	assert.True(t, ok)
	assert.Equal(t, "A", item.QuestionID)

	_, ok = path.At(1)
	assert.False(t, ok)
	_, ok = path.At(-1)
	assert.False(t, ok)
	_, ok = Path{}.At(0)
	assert.False(t, ok)
}

func TestPathCache(t *testing.T) {
	cache := NewPathCache()
	l := Lesson{ID: "l1", Questions: Questions{Easy: []Question{q("A")}}}

	first := cache.Get(l)
	l.Questions.Easy = append(l.Questions.Easy, q("B"))
	assert.Equal(t, first, cache.Get(l))

	cache.Invalidate()
	assert.Equal(t, []string{"A", "B"}, cache.Get(l).IDs())
}

func TestQuestion_IsCorrectAnswer(t *testing.T) {
	question := Question{Solution: " Paris "}

	assert.True(t, question.IsCorrectAnswer("paris"))
	assert.True(t, question.IsCorrectAnswer("  PARIS\n"))
	assert.False(t, question.IsCorrectAnswer("london"))
	assert.False(t, question.IsCorrectAnswer(""))
}

func TestQuestion_EffectiveRating(t *testing.T) {
	assert.Equal(t, 1100, Question{}.EffectiveRating())
	assert.Equal(t, 1400, Question{Rating: 1400}.EffectiveRating())
}

func TestSnapshot_UnmarshalJSON(t *testing.T) {
	body := `{
  "lessons": {
    "lesson_2": {"id": "lesson_2", "title": "Fractions", "unlocked": false, "questions": {"easy": [{"id": "q3", "content": "1/2+1/2", "solution": "1"}]}},
    "lesson_1": {"title": "Addition", "unlocked": true, "completed": true, "questions": {"easy": [{"id": "q1", "content": "1+1", "solution": "2", "hints": ["count"], "rating": 900, "correct": true, "time_taken": 12}], "medium": [], "hard": []}}
  }
}`

	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(body), &s))

	assert.Equal(t, []string{"lesson_2", "lesson_1"}, s.Order)
	assert.Equal(t, "lesson_1", s.Lessons["lesson_1"].ID)
	assert.Equal(t, boolPtr(false), s.Lessons["lesson_2"].Unlocked)
	assert.Nil(t, s.Lessons["lesson_2"].Completed)

	first := s.Lessons["lesson_1"].Questions.Easy[0]
	assert.Equal(t, 900, first.Rating)
	assert.Equal(t, []string{"count"}, first.Hints)
	require.NotNil(t, first.TimeTaken)
	assert.Equal(t, 12, *first.TimeTaken)

	encoded, err := json.Marshal(s)
	require.NoError(t, err)
	var decoded Snapshot
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, s.Order, decoded.Order)
}

func TestSnapshot_UnmarshalJSON_Invalid(t *testing.T) {
	var s Snapshot
	assert.Error(t, json.Unmarshal([]byte(`{"lessons": []}`), &s))

	require.NoError(t, json.Unmarshal([]byte(`{"lessons": null}`), &s))
	assert.Empty(t, s.Lessons)
}

func TestModules(t *testing.T) {
	snapshot := NewSnapshot(
		Lesson{ID: "l1", Title: "Counting", Completed: boolPtr(true)},
		Lesson{ID: "l2", Unlocked: boolPtr(true)},
		Lesson{ID: "l3"},
		Lesson{ID: "l4", Unlocked: boolPtr(false), Completed: boolPtr(false)},
	)

	modules := Modules(snapshot)
	require.Len(t, modules, 4)

	assert.Equal(t, "Counting", modules[0].Name)
	assert.True(t, modules[0].Unlocked, "first lesson defaults to unlocked")
	assert.Equal(t, StatusCompleted, modules[0].Status)

	assert.Equal(t, "Module 2", modules[1].Name)
	assert.Equal(t, StatusUnlocked, modules[1].Status)

	assert.False(t, modules[2].Unlocked, "later lessons default to locked")
	assert.Equal(t, StatusLocked, modules[2].Status)
	assert.Equal(t, StatusLocked, modules[3].Status)

	available, ok := FirstAvailable(modules)
	require.True(t, ok)
	assert.Equal(t, "l2", available.ID)

	_, ok = FindModule(modules, "missing")
	assert.False(t, ok)
}

func TestPoints(t *testing.T) {
	correct := func(id string, ok bool) Question {
		question := q(id)
		question.Correct = boolPtr(ok)
		return question
	}
	snapshot := NewSnapshot(
		Lesson{ID: "l1", Questions: Questions{
			Easy:   []Question{correct("e1", true), correct("e2", false), q("e3")},
			Medium: []Question{correct("m1", true)},
			Hard:   []Question{correct("h1", true), correct("h2", true)},
		}},
		Lesson{ID: "l2", Questions: Questions{
			Medium: []Question{correct("m2", true)},
		}},
	)

	assert.Equal(t, 9, LessonPoints(snapshot.Lessons["l1"]))
	assert.Equal(t, 11, Points(snapshot))
}
