package episode

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Sink receives finished episode logs. The engine hands the record off
// and moves on; persistence is the sink's problem.
type Sink interface {
	Save(ctx context.Context, log *Log) error
}

// MemorySink keeps logs in memory, for tests and interactive runs.
type MemorySink struct {
	mu   sync.Mutex
	logs []*Log
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

// Save appends the log.
func (s *MemorySink) Save(_ context.Context, log *Log) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, log)
	return nil
}

// Logs returns the saved logs in arrival order.
func (s *MemorySink) Logs() []*Log {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Log, len(s.logs))
	copy(out, s.logs)
	return out
}

// FileSink appends each log as one JSON line, so batch runs stream into a
// single file safe to tail.
type FileSink struct {
	mu   sync.Mutex
	path string
}

// NewFileSink creates a sink writing JSON lines to path.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Save appends the log to the file.
func (s *FileSink) Save(_ context.Context, log *Log) error {
	payload, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("episode: encode log %s: %w", log.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("episode: open %s: %w", s.path, err)
	}
	defer f.Close()
	if _, err := f.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("episode: write log %s: %w", log.ID, err)
	}
	return nil
}
