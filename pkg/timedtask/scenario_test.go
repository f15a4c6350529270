package timedtask

import (
	"context"
	"reflect"
	"testing"
	"time"
)

// These run against the system clock. Waits are sleep based, with the
// assertions placed so scheduler jitter cannot flip them.

func TestThrottledScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("sleeps on the real clock")
	}

	numbers := []string{"one", "two"}
	task, err := NewThrottled(500*time.Millisecond, func(_ context.Context, n *[]string) error {
		*n = append(*n, "three")
		return nil
	}, &numbers)
	if err != nil {
		t.Fatalf("NewThrottled() error: %v", err)
	}

	if !task.IsReady() {
		t.Fatalf("IsReady() returned false before ever being run")
	}

	if _, err := task.RunIfReady(context.Background()); err != nil {
		t.Fatalf("RunIfReady() error: %v", err)
	}
	if want := []string{"one", "two", "three"}; !reflect.DeepEqual(numbers, want) {
		t.Fatalf("task didn't run correctly: got %v, want %v", numbers, want)
	}

	if task.IsReady() {
		t.Fatalf("IsReady() returned true just after being run")
	}

	time.Sleep(500 * time.Millisecond)
	if !task.IsReady() {
		t.Fatalf("IsReady() returned false after interval elapsed")
	}
}

func TestDebouncedScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("sleeps on the real clock")
	}

	numbers := []string{"three", "two"}
	task, err := NewDebounced(300*time.Millisecond, func(_ context.Context, n *[]string) error {
		*n = append(*n, "one")
		return nil
	}, &numbers)
	if err != nil {
		t.Fatalf("NewDebounced() error: %v", err)
	}

	if !task.IsReady() {
		t.Fatalf("IsReady() returned false before ever being run")
	}

	if _, err := task.RunIfReady(context.Background()); err != nil {
		t.Fatalf("RunIfReady() error: %v", err)
	}
	if want := []string{"three", "two", "one"}; !reflect.DeepEqual(numbers, want) {
		t.Fatalf("task didn't run correctly: got %v, want %v", numbers, want)
	}

	if task.IsReady() {
		t.Fatalf("IsReady() returned true just after being run")
	}

	time.Sleep(150 * time.Millisecond)
	if task.IsReady() {
		t.Fatalf("IsReady() returned true before interval elapsed")
	}
	time.Sleep(150 * time.Millisecond)
	if task.IsReady() {
		t.Fatalf("IsReady() returned true before interval elapsed")
	}
	time.Sleep(300 * time.Millisecond)
	if !task.IsReady() {
		t.Fatalf("IsReady() returned false after interval elapsed")
	}
}
