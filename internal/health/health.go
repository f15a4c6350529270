// Package health provides health check functionality.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Status represents the health status of a component.
type Status string

const (
	// StatusHealthy indicates the component is healthy.
	StatusHealthy Status = "healthy"
	// StatusUnhealthy indicates the component is unhealthy.
	StatusUnhealthy Status = "unhealthy"
)

// Check represents a health check result.
type Check struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// CheckFunc produces a Check on demand.
type CheckFunc func(context.Context) Check

// Checker performs health checks.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// NewChecker creates a new health checker.
func NewChecker() *Checker {
	return &Checker{
		checks: make(map[string]CheckFunc),
	}
}

// RegisterCheck registers a health check function.
func (c *Checker) RegisterCheck(name string, checkFunc CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = checkFunc
}

// CheckHealth performs all registered health checks.
func (c *Checker) CheckHealth(ctx context.Context) map[string]Check {
	c.mu.RLock()
	defer c.mu.RUnlock()

	results := make(map[string]Check, len(c.checks))
	for name, checkFunc := range c.checks {
		results[name] = checkFunc(ctx)
	}
	return results
}

// Handler returns an HTTP handler reporting all checks. It answers 503 when
// any check is unhealthy.
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := c.CheckHealth(r.Context())

		overall := StatusHealthy
		for _, check := range results {
			if check.Status == StatusUnhealthy {
				overall = StatusUnhealthy
				break
			}
		}

		response := struct {
			Status    Status           `json:"status"`
			Checks    map[string]Check `json:"checks"`
			Timestamp time.Time        `json:"timestamp"`
		}{
			Status:    overall,
			Checks:    results,
			Timestamp: time.Now(),
		}

		w.Header().Set("Content-Type", "application/json")
		if overall == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		// Headers are already sent; nothing useful to do with an encode error.
		_ = json.NewEncoder(w).Encode(response)
	}
}

// TaskStatus is a point-in-time view of one timed task.
type TaskStatus struct {
	Name         string
	Policy       string
	Interval     time.Duration
	LastActivate time.Time
	LastSuccess  time.Time
	LastFailure  time.Time
	LastError    string
}

// failing reports whether the latest run attempt failed.
func (s TaskStatus) failing() bool {
	return !s.LastFailure.IsZero() && s.LastFailure.After(s.LastSuccess)
}

// TaskCheck builds a CheckFunc from a task status source. The check is
// unhealthy while any task's latest run attempt has failed.
func TaskCheck(statuses func() []TaskStatus) CheckFunc {
	return func(ctx context.Context) Check {
		check := Check{
			Status:    StatusHealthy,
			Timestamp: time.Now(),
			Details:   make(map[string]interface{}),
		}

		for _, s := range statuses() {
			detail := map[string]interface{}{
				"policy":        s.Policy,
				"interval":      s.Interval.String(),
				"last_activate": s.LastActivate,
			}
			if !s.LastSuccess.IsZero() {
				detail["last_success"] = s.LastSuccess
			}
			if s.failing() {
				check.Status = StatusUnhealthy
				detail["last_failure"] = s.LastFailure
				detail["last_error"] = s.LastError
			}
			check.Details[s.Name] = detail
		}

		return check
	}
}

// StorageStatus summarises the outcome of recent storage operations.
type StorageStatus struct {
	Provider      string
	LastOperation string
	LastSuccess   time.Time
	LastFailure   time.Time
	LastError     string
}

// StorageCheck builds a CheckFunc from a storage status source. The check is
// unhealthy while the most recent storage operation has failed.
func StorageCheck(status func() StorageStatus) CheckFunc {
	return func(ctx context.Context) Check {
		s := status()
		check := Check{
			Status:    StatusHealthy,
			Timestamp: time.Now(),
			Details: map[string]interface{}{
				"provider": s.Provider,
			},
		}

		if s.LastOperation != "" {
			check.Details["last_operation"] = s.LastOperation
		}
		if !s.LastSuccess.IsZero() {
			check.Details["last_success"] = s.LastSuccess
		}
		if !s.LastFailure.IsZero() && s.LastFailure.After(s.LastSuccess) {
			check.Status = StatusUnhealthy
			check.Details["last_failure"] = s.LastFailure
			check.Details["last_error"] = s.LastError
		}

		return check
	}
}

// ReadinessHandler returns a simple readiness check handler.
func ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	}
}

// LivenessHandler returns a simple liveness check handler.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("alive\n"))
	}
}
