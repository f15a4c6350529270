package utils

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// defaultReportEvery is how many bytes pass between progress callbacks.
const defaultReportEvery = 10 * 1024 * 1024

// ProgressReader wraps an io.Reader, counts bytes read and periodically
// reports progress.
type ProgressReader struct {
	reader      io.Reader
	bytesRead   atomic.Int64
	startTime   time.Time
	report      func(bytesRead int64, elapsed time.Duration)
	reportEvery int64
}

// NewProgressReader creates a progress tracking reader. report may be nil.
func NewProgressReader(reader io.Reader, report func(bytesRead int64, elapsed time.Duration)) *ProgressReader {
	return &ProgressReader{
		reader:      reader,
		startTime:   time.Now(),
		report:      report,
		reportEvery: defaultReportEvery,
	}
}

// Read implements io.Reader.
func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		total := pr.bytesRead.Add(int64(n))

		// Fires each time the running total crosses a multiple of reportEvery.
		if pr.report != nil && total/pr.reportEvery != (total-int64(n))/pr.reportEvery {
			pr.report(total, time.Since(pr.startTime))
		}
	}
	return n, err
}

// Body returns pr for use as an upload body. When the wrapped reader is an
// io.Seeker the returned body is one too, so an upload can be rewound and
// retried; seeking moves the byte count to the new offset.
func (pr *ProgressReader) Body() io.Reader {
	if seeker, ok := pr.reader.(io.Seeker); ok {
		return &progressReadSeeker{ProgressReader: pr, seeker: seeker}
	}
	return pr
}

type progressReadSeeker struct {
	*ProgressReader
	seeker io.Seeker
}

// Seek implements io.Seeker.
func (prs *progressReadSeeker) Seek(offset int64, whence int) (int64, error) {
	pos, err := prs.seeker.Seek(offset, whence)
	if err == nil {
		prs.bytesRead.Store(pos)
	}
	return pos, err
}

// BytesRead returns the total number of bytes read.
func (pr *ProgressReader) BytesRead() int64 {
	return pr.bytesRead.Load()
}

// FormatBytes formats bytes in human-readable format.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatRate formats transfer rate in human-readable format.
func FormatRate(bytesPerSecond float64) string {
	return fmt.Sprintf("%s/s", FormatBytes(int64(bytesPerSecond)))
}
