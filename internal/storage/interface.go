// Package storage defines the object storage providers snapshots are shipped to.
package storage

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/imedwei/timedtask/internal/utils"
)

// MetadataTimestamp is the object metadata key holding the snapshot time (RFC 3339).
const MetadataTimestamp = "snapshot-timestamp"

// Storage defines the interface for snapshot storage operations.
type Storage interface {
	// Upload stores a snapshot with the given key.
	Upload(ctx context.Context, key string, reader io.Reader, metadata map[string]string) error

	// Delete removes a snapshot with the given key.
	Delete(ctx context.Context, key string) error

	// List returns all snapshots matching the given prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// LatestSnapshotTime returns the time of the most recent snapshot, or the
	// zero time when there is none.
	LatestSnapshotTime(ctx context.Context) (time.Time, error)
}

// ObjectInfo contains information about a stored snapshot.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	Metadata     map[string]string
}

// latestObject returns the most recently modified snapshot. Objects without
// the snapshot extension are ignored.
func latestObject(objects []ObjectInfo) (ObjectInfo, bool) {
	var (
		latest ObjectInfo
		found  bool
	)
	for _, obj := range objects {
		if !utils.IsSnapshotKey(obj.Key) {
			continue
		}
		if !found || obj.LastModified.After(latest.LastModified) {
			latest = obj
			found = true
		}
	}
	return latest, found
}

// snapshotTime prefers the timestamp recorded in metadata over LastModified.
func snapshotTime(metadata map[string]string, fallback time.Time) time.Time {
	if ts, ok := metadata[MetadataTimestamp]; ok {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			return t
		}
	}
	return fallback
}

// joinKey prepends prefix to key, if set.
func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return path.Join(prefix, key)
}

// trimKeyPrefix removes prefix and its separator from key.
func trimKeyPrefix(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, strings.TrimSuffix(prefix, "/")+"/")
}
