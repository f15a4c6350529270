// Package timedtask wraps a unit of work so that it runs no more often than a
// fixed interval.
//
// Two policies are provided:
//
//   - Throttle: at most once per interval, counted from the last successful run.
//   - Debounce: only after a quiet period of one interval with no failed
//     readiness checks. Every check made before the interval elapses restarts
//     the quiet period.
//
// A Task never schedules itself. The caller polls it on its own schedule (a
// loop, a ticker, an event handler):
//
//	t, err := timedtask.NewDebounced(500*time.Millisecond, save, doc)
//	if err != nil {
//		return err
//	}
//	// on every keystroke
//	if _, err := t.RunIfReady(ctx); err != nil {
//		return err
//	}
//
// Poll and IsReady are not idempotent for Debounce tasks: a check that fails
// resets the quiet period. RunIfReady checks exactly once per call.
//
// A Task holds no locks. Callers sharing one between goroutines must
// synchronize access themselves.
package timedtask
