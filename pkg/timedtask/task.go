package timedtask

import (
	"context"
	"fmt"
	"time"
)

// Func is the unit of work wrapped by a Task. args is the value bound at
// construction; it is passed unchanged on every run.
type Func[A any] func(ctx context.Context, args A) error

// Task runs a bound Func no more often than its Policy allows.
//
// The zero value is not usable; create tasks with New, NewThrottled or
// NewDebounced.
type Task[A any] struct {
	policy   Policy
	interval time.Duration
	fn       Func[A]
	args     A
	clock    Clock

	// lastActivate is written by Run on success, and by Poll when a
	// Debounce check fails.
	lastActivate time.Time
}

// New creates a task with the given policy. The task is ready immediately.
func New[A any](policy Policy, interval time.Duration, fn Func[A], args A, opts ...Option) (*Task[A], error) {
	if !policy.valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, policy)
	}
	if interval < 0 {
		return nil, fmt.Errorf("%w: %s must be non-negative", ErrInvalidInterval, interval)
	}
	if fn == nil {
		return nil, ErrNilFunc
	}

	cfg := config{clock: SystemClock}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Task[A]{
		policy:       policy,
		interval:     interval,
		fn:           fn,
		args:         args,
		clock:        cfg.clock,
		lastActivate: cfg.clock.Now().Add(-interval),
	}, nil
}

// NewThrottled creates a Throttle task.
func NewThrottled[A any](interval time.Duration, fn Func[A], args A, opts ...Option) (*Task[A], error) {
	return New(Throttle, interval, fn, args, opts...)
}

// NewDebounced creates a Debounce task.
func NewDebounced[A any](interval time.Duration, fn Func[A], args A, opts ...Option) (*Task[A], error) {
	return New(Debounce, interval, fn, args, opts...)
}

// Poll performs one readiness check and returns its outcome.
//
// For Debounce tasks a failed check restarts the quiet period, so calling Poll
// again changes the answer. Use the returned result instead of checking twice.
func (t *Task[A]) Poll() PollResult {
	now := t.clock.Now()
	elapsed := now.Sub(t.lastActivate)

	switch t.policy {
	case Throttle:
		if elapsed >= t.interval {
			return PollResult{Ready: true, Elapsed: elapsed}
		}
		return PollResult{
			Elapsed: elapsed,
			RetryAt: t.lastActivate.Add(t.interval),
		}

	case Debounce:
		if elapsed >= t.interval {
			return PollResult{Ready: true, Elapsed: elapsed}
		}
		t.lastActivate = now
		return PollResult{
			Reset:   true,
			Elapsed: elapsed,
			RetryAt: now.Add(t.interval),
		}

	default:
		return PollResult{Elapsed: elapsed}
	}
}

// IsReady reports whether the policy currently permits a run. It is Poll().Ready
// and has the same side effect for Debounce tasks.
func (t *Task[A]) IsReady() bool {
	return t.Poll().Ready
}

// Run invokes the task once with the bound args. If the task fails, its error
// is returned as is and the last activate time is left unchanged, so the run
// can be retried on the next ready check.
func (t *Task[A]) Run(ctx context.Context) error {
	if err := t.fn(ctx, t.args); err != nil {
		return err
	}
	t.lastActivate = t.clock.Now()
	return nil
}

// RunIfReady checks readiness once and, if ready, runs the task once. It
// reports whether the task was invoked. A task that is not ready is a no-op
// returning false and a nil error.
func (t *Task[A]) RunIfReady(ctx context.Context) (bool, error) {
	if !t.Poll().Ready {
		return false, nil
	}
	return true, t.Run(ctx)
}

// Policy returns the task's policy.
func (t *Task[A]) Policy() Policy {
	return t.policy
}

// Interval returns the minimum interval between runs.
func (t *Task[A]) Interval() time.Duration {
	return t.interval
}

// LastActivateTime returns the completion time of the last successful run, or
// the time of the last failed Debounce check if that is later. Before any run
// it is the creation time minus Interval.
func (t *Task[A]) LastActivateTime() time.Time {
	return t.lastActivate
}

// Func returns the wrapped task func.
func (t *Task[A]) Func() Func[A] {
	return t.fn
}

// Args returns the args bound at construction.
func (t *Task[A]) Args() A {
	return t.args
}
