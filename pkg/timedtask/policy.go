package timedtask

import "fmt"

// Policy selects how a Task decides readiness.
type Policy int

const (
	// Throttle allows a run at most once per interval, measured from the last
	// successful run. Its readiness check has no side effects.
	Throttle Policy = iota + 1

	// Debounce allows a run only after a full interval passes with no failed
	// readiness checks. A failed check restarts the interval.
	Debounce
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	switch p {
	case Throttle:
		return "throttle"
	case Debounce:
		return "debounce"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

func (p Policy) valid() bool {
	return p == Throttle || p == Debounce
}
