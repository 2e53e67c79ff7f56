package lesson

import "fmt"

type Status string

const (
	StatusLocked    Status = "locked"
	StatusUnlocked  Status = "unlocked"
	StatusCompleted Status = "completed"
)

// Module is a lesson with flags resolved for display and selection.
type Module struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Unlocked  bool   `json:"unlocked" yaml:"unlocked"`
	Completed bool   `json:"completed" yaml:"completed"`
	Status    Status `json:"status" yaml:"status"`
	Lesson    Lesson `json:"-" yaml:"-"`
}

func StatusOf(unlocked, completed bool) Status {
	switch {
	case completed:
		return StatusCompleted
	case unlocked:
		return StatusUnlocked
	default:
		return StatusLocked
	}
}

// Modules derives module flags from a snapshot.
// A lesson without an unlocked flag is unlocked only when it is the first one.
func Modules(s Snapshot) []Module {
	lessons := s.OrderedLessons()
	modules := make([]Module, 0, len(lessons))
	for i, l := range lessons {
		unlocked := i == 0
		if l.Unlocked != nil {
			unlocked = *l.Unlocked
		}
		completed := false
		if l.Completed != nil {
			completed = *l.Completed
		}
		name := l.Title
		if name == "" {
			name = fmt.Sprintf("Module %d", i+1)
		}
		modules = append(modules, Module{
			ID:        l.ID,
			Name:      name,
			Unlocked:  unlocked,
			Completed: completed,
			Status:    StatusOf(unlocked, completed),
			Lesson:    l,
		})
	}
	return modules
}

// FirstAvailable returns the first module that is unlocked and not completed.
func FirstAvailable(modules []Module) (Module, bool) {
	for _, m := range modules {
		if m.Unlocked && !m.Completed {
			return m, true
		}
	}
	return Module{}, false
}

func FindModule(modules []Module, id string) (Module, bool) {
	for _, m := range modules {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}
