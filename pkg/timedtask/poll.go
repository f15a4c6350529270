package timedtask

import (
	"fmt"
	"time"
)

// PollResult describes one readiness check.
type PollResult struct {
	// Ready reports whether a run is permitted now.
	Ready bool

	// Reset is true when the check restarted a Debounce quiet period.
	Reset bool

	// Elapsed is the time since the last activation, measured before any reset.
	Elapsed time.Duration

	// RetryAt is the earliest time a check can succeed if no other check
	// happens in between. Zero when Ready.
	RetryAt time.Time
}

// String returns a human-readable reason for the result.
func (r PollResult) String() string {
	if r.Ready {
		return fmt.Sprintf("last run was %s ago", formatDuration(r.Elapsed))
	}
	if r.Reset {
		return fmt.Sprintf("activity %s ago, quiet period restarted", formatDuration(r.Elapsed))
	}
	if r.RetryAt.IsZero() {
		return "never ready"
	}
	return fmt.Sprintf("last run was %s ago, next run allowed at %s",
		formatDuration(r.Elapsed),
		r.RetryAt.Format(time.RFC3339),
	)
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.0f seconds", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.0f minutes", d.Minutes())
	default:
		return fmt.Sprintf("%.1f hours", d.Hours())
	}
}
