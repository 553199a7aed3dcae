package log

import (
	"io"
	"os"
	"path/filepath"
	"sync"
)

// FileExtension is the conventional extension of protocol log files.
const FileExtension = ".nlog"

// FileLogger writes protocol events to a file in CBOR format.
// It is safe for concurrent use from multiple goroutines.
type FileLogger struct {
	out     io.WriteCloser
	encoder *EventEncoder
	mu      sync.Mutex
	closed  bool
	written int
	dropped int
}

// NewFileLogger creates a new FileLogger that writes to the specified path.
// If the file exists, new events are appended. The file is created with
// permissions 0644 if it doesn't exist.
func NewFileLogger(path string) (*FileLogger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return NewWriterLogger(f), nil
}

// NewWriterLogger creates a FileLogger that encodes events to w.
func NewWriterLogger(w io.WriteCloser) *FileLogger {
	return &FileLogger{
		out:     w,
		encoder: NewEncoder(w),
	}
}

// Log writes an event to the log file.
// This method is safe for concurrent use.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	// Encoding errors are counted, never returned to the caller.
	if err := l.encoder.Encode(event); err != nil {
		l.dropped++
		return
	}
	l.written++
}

// Stats returns the number of events written and dropped.
func (l *FileLogger) Stats() (written, dropped int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.written, l.dropped
}

// Close closes the log file.
// It is safe to call Close multiple times.
// After Close is called, subsequent Log calls are silently ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	return l.out.Close()
}

// Compile-time interface satisfaction check.
var _ Logger = (*FileLogger)(nil)
