package timedtask

import "errors"

var (
	// ErrInvalidInterval is returned by New when the interval is negative.
	ErrInvalidInterval = errors.New("timedtask: invalid interval")
	// ErrNilFunc is returned by New when no task func is given.
	ErrNilFunc = errors.New("timedtask: nil task func")
	// ErrUnknownPolicy is returned by New for a policy other than Throttle or Debounce.
	ErrUnknownPolicy = errors.New("timedtask: unknown policy")
)
