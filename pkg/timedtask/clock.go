package timedtask

import "time"

// Clock provides the current time. It exists so tests can control time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock. time.Now carries a monotonic reading, so
// elapsed-time comparisons are not affected by wall clock adjustments.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}
