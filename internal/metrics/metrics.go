// Package metrics provides Prometheus metrics for the snapshot service.
package metrics

import (
	"github.com/imedwei/timedtask/pkg/timedtask"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TaskChecks tracks readiness checks per timed task.
	TaskChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshotd_task_checks_total",
		Help: "Total number of readiness checks, by outcome",
	}, []string{"task", "result"})

	// TaskRuns tracks timed task invocations.
	TaskRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshotd_task_runs_total",
		Help: "Total number of timed task runs",
	}, []string{"task", "status"})

	// UploadDuration tracks how long snapshot uploads take.
	UploadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "snapshotd_upload_duration_seconds",
		Help:    "Duration of snapshot uploads in seconds",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
	})

	// SnapshotSize tracks the size of the last shipped snapshot.
	SnapshotSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "snapshotd_snapshot_size_bytes",
		Help: "Size of the last snapshot in bytes",
	})

	// LastSnapshotTimestamp tracks when the last successful upload finished.
	LastSnapshotTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "snapshotd_last_snapshot_timestamp",
		Help: "Unix timestamp of the last successful snapshot",
	})

	// StorageOperations tracks storage operations.
	StorageOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshotd_storage_operations_total",
		Help: "Total number of storage operations",
	}, []string{"operation", "provider", "status"})

	// SnapshotsDeleted tracks snapshots removed by retention.
	SnapshotsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapshotd_snapshots_deleted_total",
		Help: "Total number of old snapshots deleted",
	})

	// Info provides static information about the service.
	Info = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "snapshotd_info",
		Help: "Information about the snapshot service",
	}, []string{"version", "storage_provider"})
)

// RecordCheck records the outcome of one readiness check.
func RecordCheck(task string, res timedtask.PollResult) {
	result := "not_ready"
	switch {
	case res.Ready:
		result = "ready"
	case res.Reset:
		result = "reset"
	}
	TaskChecks.WithLabelValues(task, result).Inc()
}

// RecordTaskRun records a task invocation with its status.
func RecordTaskRun(task string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	TaskRuns.WithLabelValues(task, status).Inc()
}

// RecordStorageOperation records a storage operation.
func RecordStorageOperation(operation, provider string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	StorageOperations.WithLabelValues(operation, provider, status).Inc()
}
