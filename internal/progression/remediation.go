package progression

// Directive is the position change applied after an answer.
type Directive int

const (
	// None is returned once the lesson is complete and the state is terminal.
	None Directive = iota
	Hold
	Advance
	RegressOne
)

func (d Directive) String() string {
	switch d {
	case Hold:
		return "HOLD"
	case Advance:
		return "ADVANCE"
	case RegressOne:
		return "REGRESS_ONE"
	default:
		return "NONE"
	}
}

func (d Directive) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Decide picks the next position move.
// A correct answer that needed the solution or earlier wrong attempts sends the
// learner one question back. Repeated regressions are not capped.
func Decide(correct, usedSolution bool, wrongAttempts int, lessonComplete bool) Directive {
	switch {
	case !correct:
		return Hold
	case lessonComplete:
		return None
	case usedSolution || wrongAttempts > 0:
		return RegressOne
	default:
		return Advance
	}
}

func (d Directive) offset() int {
	switch d {
	case Advance:
		return 1
	case RegressOne:
		return -1
	default:
		return 0
	}
}
