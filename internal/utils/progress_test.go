package utils

import (
	"bytes"
	"io"
	"testing"
	"time"
)

func TestProgressReader_CountsBytes(t *testing.T) {
	data := []byte("Hello, World!")
	pr := NewProgressReader(bytes.NewReader(data), nil)

	got, err := io.ReadAll(pr)
	if err != nil {
		t.Fatalf("ReadAll() error: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("read %q, want %q", got, data)
	}
	if pr.BytesRead() != int64(len(data)) {
		t.Errorf("BytesRead() = %d, want %d", pr.BytesRead(), len(data))
	}
}

func TestProgressReader_Reports(t *testing.T) {
	var reports []int64
	pr := NewProgressReader(bytes.NewReader(make([]byte, 100)), func(n int64, _ time.Duration) {
		reports = append(reports, n)
	})
	pr.reportEvery = 30

	buf := make([]byte, 20)
	for {
		if _, err := pr.Read(buf); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("Read() error: %v", err)
		}
	}

	// Totals go 20, 40, 60, 80, 100: thresholds 30, 60 and 90 are crossed at 40, 60, 100.
	want := []int64{40, 60, 100}
	if len(reports) != len(want) {
		t.Fatalf("reports = %v, want %v", reports, want)
	}
	for i := range want {
		if reports[i] != want[i] {
			t.Errorf("report %d = %d, want %d", i, reports[i], want[i])
		}
	}
}

func TestProgressReader_BodySeeks(t *testing.T) {
	data := []byte("snapshot contents")
	pr := NewProgressReader(bytes.NewReader(data), nil)

	body := pr.Body()
	seeker, ok := body.(io.Seeker)
	if !ok {
		t.Fatalf("Body() over a seekable reader is %T, want an io.Seeker", body)
	}

	if _, err := io.ReadAll(body); err != nil {
		t.Fatalf("ReadAll() error: %v", err)
	}

	if _, err := seeker.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek() error: %v", err)
	}
	if pr.BytesRead() != 0 {
		t.Errorf("BytesRead() after rewind = %d, want 0", pr.BytesRead())
	}

	got, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("ReadAll() after rewind error: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("read after rewind %q, want %q", got, data)
	}
	if pr.BytesRead() != int64(len(data)) {
		t.Errorf("BytesRead() = %d, want %d", pr.BytesRead(), len(data))
	}
}

func TestProgressReader_BodyNotSeekable(t *testing.T) {
	pr := NewProgressReader(io.NopCloser(bytes.NewReader([]byte("x"))), nil)

	if _, ok := pr.Body().(io.Seeker); ok {
		t.Errorf("Body() over a plain reader should not be an io.Seeker")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatBytes(tt.bytes); got != tt.want {
				t.Errorf("FormatBytes(%d) = %v, want %v", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestFormatRate(t *testing.T) {
	if got, want := FormatRate(2048), "2.0 KB/s"; got != want {
		t.Errorf("FormatRate() = %v, want %v", got, want)
	}
}
