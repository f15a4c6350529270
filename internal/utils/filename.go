// Package utils provides utility functions for the snapshot service.
package utils

import (
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// SnapshotExt is the file extension of shipped snapshots.
const SnapshotExt = ".snap"

// timestampLayout is RFC 3339 with dashes instead of colons so names stay
// valid on every filesystem. Milliseconds and the Z are appended separately.
const timestampLayout = "2006-01-02T15-04-05"

// GenerateSnapshotName creates a timestamped snapshot name for a source file.
//
// Format: prefix-source-2006-01-02T15-04-05-000Z.snap
func GenerateSnapshotName(prefix string, timestamp time.Time, sourcePath string) string {
	t := timestamp.UTC()
	ms := t.Nanosecond() / int(time.Millisecond)
	timeStr := fmt.Sprintf("%s-%03dZ", t.Format(timestampLayout), ms)

	source := sanitize(strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath)))
	if source == "" {
		source = "source"
	}

	prefix = strings.TrimSuffix(prefix, "-")
	if prefix == "" {
		prefix = "snapshot"
	}

	return fmt.Sprintf("%s-%s-%s%s", prefix, source, timeStr, SnapshotExt)
}

// SnapshotKey places a snapshot name under a year/month directory.
func SnapshotKey(timestamp time.Time, name string) string {
	t := timestamp.UTC()
	return fmt.Sprintf("%d/%02d/%s", t.Year(), t.Month(), name)
}

// IsSnapshotKey reports whether key names a snapshot file.
func IsSnapshotKey(key string) bool {
	return strings.HasSuffix(key, SnapshotExt)
}

// ParseSnapshotName extracts the timestamp from a snapshot name or key.
func ParseSnapshotName(name string) (time.Time, error) {
	base := path.Base(name)
	if !strings.HasSuffix(base, SnapshotExt) {
		return time.Time{}, fmt.Errorf("not a snapshot name: %s", name)
	}
	base = strings.TrimSuffix(base, SnapshotExt)

	// Timestamp is the last 24 characters: 2006-01-02T15-04-05-000Z
	if len(base) < 24 {
		return time.Time{}, fmt.Errorf("name too short to contain timestamp")
	}
	timeStr := base[len(base)-24:]

	if timeStr[19] != '-' || timeStr[23] != 'Z' {
		return time.Time{}, fmt.Errorf("invalid timestamp format")
	}

	ms, err := strconv.Atoi(timeStr[20:23])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid milliseconds: %w", err)
	}

	t, err := time.Parse(timestampLayout, timeStr[:19])
	if err != nil {
		return time.Time{}, err
	}

	return t.Add(time.Duration(ms) * time.Millisecond).UTC(), nil
}

// sanitize keeps letters, digits, dots and underscores; anything else becomes a dash.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_':
			return r
		default:
			return '-'
		}
	}, s)
}
