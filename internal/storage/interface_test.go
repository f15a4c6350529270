package storage

import (
	"testing"
	"time"
)

func TestJoinKey(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{
			name:   "no prefix",
			prefix: "",
			key:    "2024/05/state.snap",
			want:   "2024/05/state.snap",
		},
		{
			name:   "with prefix",
			prefix: "snapshots/prod",
			key:    "2024/05/state.snap",
			want:   "snapshots/prod/2024/05/state.snap",
		},
		{
			name:   "prefix with trailing slash",
			prefix: "snapshots/",
			key:    "state.snap",
			want:   "snapshots/state.snap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinKey(tt.prefix, tt.key); got != tt.want {
				t.Errorf("joinKey() = %v, want %v", got, tt.want)
			}
			// Both providers resolve keys the same way.
			if got := (&S3Storage{prefix: tt.prefix}).getFullKey(tt.key); got != tt.want {
				t.Errorf("S3Storage.getFullKey() = %v, want %v", got, tt.want)
			}
			if got := (&GCSStorage{prefix: tt.prefix}).getFullKey(tt.key); got != tt.want {
				t.Errorf("GCSStorage.getFullKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrimKeyPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{
			name:   "no prefix",
			prefix: "",
			key:    "state.snap",
			want:   "state.snap",
		},
		{
			name:   "with prefix",
			prefix: "snapshots",
			key:    "snapshots/state.snap",
			want:   "state.snap",
		},
		{
			name:   "prefix with trailing slash",
			prefix: "snapshots/",
			key:    "snapshots/2024/state.snap",
			want:   "2024/state.snap",
		},
		{
			name:   "key equal to prefix",
			prefix: "snapshots",
			key:    "snapshots",
			want:   "snapshots",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trimKeyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Errorf("trimKeyPrefix() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLatestObject(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	if _, ok := latestObject(nil); ok {
		t.Errorf("latestObject(nil) reported an object")
	}

	objects := []ObjectInfo{
		{Key: "2024/05/a.snap", LastModified: base},
		{Key: "2024/05/c.snap", LastModified: base.Add(2 * time.Hour)},
		{Key: "notes/readme.txt", LastModified: base.Add(3 * time.Hour)},
		{Key: "2024/05/b.snap", LastModified: base.Add(time.Hour)},
	}
	got, ok := latestObject(objects)
	if !ok || got.Key != "2024/05/c.snap" {
		t.Errorf("latestObject() = %v, %v; want key 2024/05/c.snap", got, ok)
	}

	if got, ok := latestObject([]ObjectInfo{{Key: "backup.sql.gz", LastModified: base}}); ok {
		t.Errorf("latestObject() with only foreign objects = %v, want none", got)
	}
}

func TestSnapshotTime(t *testing.T) {
	fallback := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	recorded := time.Date(2024, 4, 30, 23, 59, 58, 500_000_000, time.UTC)

	tests := []struct {
		name     string
		metadata map[string]string
		want     time.Time
	}{
		{"no metadata", nil, fallback},
		{"recorded", map[string]string{MetadataTimestamp: recorded.Format(time.RFC3339Nano)}, recorded},
		{"garbage", map[string]string{MetadataTimestamp: "yesterday"}, fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := snapshotTime(tt.metadata, fallback); !got.Equal(tt.want) {
				t.Errorf("snapshotTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateServiceAccountJSON(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr bool
	}{
		{"valid", `{"type": "service_account", "project_id": "p"}`, false},
		{"wrong type", `{"type": "authorized_user"}`, true},
		{"not json", `service_account`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateServiceAccountJSON(tt.json); (err != nil) != tt.wantErr {
				t.Errorf("ValidateServiceAccountJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
