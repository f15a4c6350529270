package utils

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateSnapshotName(t *testing.T) {
	timestamp := time.Date(2025, 1, 21, 10, 30, 45, 123000000, time.UTC)

	tests := []struct {
		name       string
		prefix     string
		sourcePath string
		want       string
	}{
		{
			name:       "with prefix",
			prefix:     "prod",
			sourcePath: "/data/state.db",
			want:       "prod-state-2025-01-21T10-30-45-123Z.snap",
		},
		{
			name:       "without prefix",
			prefix:     "",
			sourcePath: "/data/state.db",
			want:       "snapshot-state-2025-01-21T10-30-45-123Z.snap",
		},
		{
			name:       "prefix with trailing dash",
			prefix:     "prod-",
			sourcePath: "config.yaml",
			want:       "prod-config-2025-01-21T10-30-45-123Z.snap",
		},
		{
			name:       "source with spaces",
			prefix:     "prod",
			sourcePath: "/home/me/my notes.txt",
			want:       "prod-my-notes-2025-01-21T10-30-45-123Z.snap",
		},
		{
			name:       "source without extension",
			prefix:     "prod",
			sourcePath: "/var/lib/app/journal",
			want:       "prod-journal-2025-01-21T10-30-45-123Z.snap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateSnapshotName(tt.prefix, timestamp, tt.sourcePath)
			if got != tt.want {
				t.Errorf("GenerateSnapshotName() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateSnapshotName_NonUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	timestamp := time.Date(2025, 1, 21, 12, 30, 45, 0, loc)

	got := GenerateSnapshotName("prod", timestamp, "state.db")
	if !strings.Contains(got, "2025-01-21T10-30-45-000Z") {
		t.Errorf("GenerateSnapshotName() = %v, want UTC timestamp", got)
	}
}

func TestSnapshotKey(t *testing.T) {
	timestamp := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)

	if got, want := SnapshotKey(timestamp, "a.snap"), "2025/03/a.snap"; got != want {
		t.Errorf("SnapshotKey() = %v, want %v", got, want)
	}
}

func TestParseSnapshotName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "plain name",
			input: "prod-state-2025-01-21T10-30-45-123Z.snap",
			want:  time.Date(2025, 1, 21, 10, 30, 45, 123000000, time.UTC),
		},
		{
			name:  "full key",
			input: "2025/01/prod-state-2025-01-21T10-30-45-000Z.snap",
			want:  time.Date(2025, 1, 21, 10, 30, 45, 0, time.UTC),
		},
		{
			name:    "wrong extension",
			input:   "prod-state-2025-01-21T10-30-45-123Z.tar.gz",
			wantErr: true,
		},
		{
			name:    "too short",
			input:   "x.snap",
			wantErr: true,
		},
		{
			name:    "bad timestamp",
			input:   "prod-state-2025-13-21T10-30-45-123Z.snap",
			wantErr: true,
		},
		{
			name:    "missing zone marker",
			input:   "prod-state-2025-01-21T10-30-45-1234.snap",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSnapshotName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSnapshotName() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseSnapshotName() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	original := time.Date(2025, 6, 30, 23, 59, 59, 999000000, time.UTC)

	name := GenerateSnapshotName("prod", original, "/data/state.db")
	parsed, err := ParseSnapshotName(SnapshotKey(original, name))
	if err != nil {
		t.Fatalf("ParseSnapshotName() error = %v", err)
	}

	if !parsed.Equal(original) {
		t.Errorf("round trip: got %v, want %v", parsed, original)
	}
}

func TestIsSnapshotKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"2025/01/prod-state-2025-01-21T10-00-00-000Z.snap", true},
		{"manual.snap", true},
		{"notes/readme.txt", false},
		{"backup.snap.tmp", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := IsSnapshotKey(tt.key); got != tt.want {
				t.Errorf("IsSnapshotKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}
