// File: lixenwraith/reload/audit.go
package reload

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditEntry is one record in the audit trail: a request lifecycle event or an
// operational note, with free-form metadata.
type AuditEntry struct {
	Time     time.Time      `json:"time"`
	Category string         `json:"category"`
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Audit categories.
const (
	AuditCategoryRequest = "audit"
	AuditCategorySystem  = "system"
)

// AuditSink appends JSON-lines audit entries to a destination file. A sink is
// bound to its destination for life; changing the configured log directory
// swaps in a whole new sink through the runtime state rather than mutating an
// existing one under concurrent writers.
type AuditSink struct {
	mu   sync.Mutex
	dest string
	w    io.Writer
	f    *os.File // nil when writing to stderr
}

// NewAuditSink opens a sink writing to audit.log under dir. An empty dir
// falls back to stderr, which keeps a misconfigured deployment observable.
func NewAuditSink(dir string) (*AuditSink, error) {
	if dir == "" {
		return &AuditSink{dest: "", w: os.Stderr}, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory '%s': %w", dir, err)
	}

	path := filepath.Join(dir, "audit.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log '%s': %w", path, err)
	}
	return &AuditSink{dest: dir, w: f, f: f}, nil
}

// Destination returns the directory the sink was built for. The reload loop
// compares it against the logging section to decide whether a swap is needed.
func (s *AuditSink) Destination() string {
	return s.dest
}

// Append writes one entry as a JSON line. Entries from concurrent writers are
// serialized so lines never interleave.
func (s *AuditSink) Append(e AuditEntry) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode audit entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// Close releases the underlying file. Call only once all in-flight writers
// that captured this sink have finished.
func (s *AuditSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
