// Package logsink persists per-process execution logs. Each launched
// process gets its own file in a shared temp directory; every line is
// prefixed with a tag identifying the originating stream.
package logsink

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Tags prefixing each persisted line.
const (
	TagOut  = "[OUT]"
	TagErr  = "[ERR]"
	TagInfo = "[INFO]"
)

// Dir manages the process-wide log directory. The underlying temp
// directory is created lazily on the first Open and is never torn down
// within a run.
type Dir struct {
	mu   sync.Mutex
	path string
}

// NewDir creates a Dir. No filesystem state is touched until Open.
func NewDir() *Dir {
	return &Dir{}
}

// Open allocates a fresh log file with a collision-free name and
// returns a Sink writing to it.
func (d *Dir) Open() (*Sink, error) {
	dir, err := d.ensure()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, uuid.New().String()+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating log file: %w", err)
	}
	return &Sink{f: f, path: path}, nil
}

func (d *Dir) ensure() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.path != "" {
		return d.path, nil
	}
	dir, err := os.MkdirTemp("", "foreman-logs-*")
	if err != nil {
		return "", fmt.Errorf("creating log directory: %w", err)
	}
	d.path = dir
	return dir, nil
}

// Sink is an append-only writer for one process's log file. Writes
// from the stdout and stderr streaming goroutines may interleave; each
// line is appended atomically under the sink's lock.
type Sink struct {
	mu     sync.Mutex
	f      *os.File
	path   string
	closed bool
}

// Path returns the absolute path of the underlying log file.
// It is stable for the lifetime of the process being logged.
func (s *Sink) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Write appends one tagged line to the log. A nil sink discards the
// line, so launches proceed even when no log file could be created.
func (s *Sink) Write(tag, text string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	fmt.Fprintf(s.f, "%s %s\n", tag, text)
}

// Writef appends one tagged, formatted line to the log.
func (s *Sink) Writef(tag, format string, args ...any) {
	s.Write(tag, fmt.Sprintf(format, args...))
}

// Close flushes and releases the file descriptor. Safe to call more
// than once; only the first call has effect.
func (s *Sink) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.f.Sync(); err != nil {
		s.f.Close()
		return fmt.Errorf("flushing log %s: %w", s.path, err)
	}
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("closing log %s: %w", s.path, err)
	}
	return nil
}
