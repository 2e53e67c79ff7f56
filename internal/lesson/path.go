package lesson

// PathItem is one position of a question path.
type PathItem struct {
	QuestionID string `json:"question_id" yaml:"question_id"`
	Tier       Tier   `json:"difficulty" yaml:"difficulty"`
}

// Path is the ordered sequence of questions a learner traverses in a lesson.
type Path []PathItem

// BuildPath visits tiers easy, medium, hard and keeps the lesson's order within a tier.
// A question id appearing in more than one tier keeps its first position only.
func BuildPath(l Lesson) Path {
	seen := make(map[string]bool, l.Questions.Len())
	path := make(Path, 0, l.Questions.Len())
	for _, tier := range Tiers {
		for _, q := range l.Questions.ByTier(tier) {
			if seen[q.ID] {
				continue
			}
			seen[q.ID] = true
			path = append(path, PathItem{QuestionID: q.ID, Tier: tier})
		}
	}
	return path
}

func (p Path) Len() int {
	return len(p)
}

func (p Path) At(index int) (PathItem, bool) {
	if index < 0 || index >= len(p) {
		return PathItem{}, false
	}
	return p[index], true
}

func (p Path) IDs() []string {
	ids := make([]string, len(p))
	for i, item := range p {
		ids[i] = item.QuestionID
	}
	return ids
}

// IndexQuestions maps question ids to the first question carrying that id.
func IndexQuestions(l Lesson) map[string]Question {
	index := make(map[string]Question, l.Questions.Len())
	for _, tier := range Tiers {
		for _, q := range l.Questions.ByTier(tier) {
			if _, ok := index[q.ID]; ok {
				continue
			}
			index[q.ID] = q
		}
	}
	return index
}

// PathCache memoizes built paths per lesson id.
// It is not safe for concurrent use.
type PathCache struct {
	paths map[string]Path
}

func NewPathCache() *PathCache {
	return &PathCache{paths: make(map[string]Path)}
}

func (c *PathCache) Get(l Lesson) Path {
	if path, ok := c.paths[l.ID]; ok {
		return path
	}
	path := BuildPath(l)
	c.paths[l.ID] = path
	return path
}

// Invalidate drops every cached path, used after the lesson set is refreshed.
func (c *PathCache) Invalidate() {
	c.paths = make(map[string]Path)
}
