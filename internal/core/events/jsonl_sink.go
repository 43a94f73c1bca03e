package events

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// JSONLSink appends events to a JSON lines file.
type JSONLSink struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewJSONLSink(path string) *JSONLSink {
	return &JSONLSink{path: path, now: time.Now}
}

// Emit appends one line per event.
func (s *JSONLSink) Emit(_ context.Context, evs []Event) error {
	if len(evs) == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create events dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open events file: %w", err)
	}
	defer file.Close()

	at := s.now()
	writer := bufio.NewWriter(file)
	for _, e := range evs {
		line, err := json.Marshal(NewRecord(e, at))
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write event: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush events: %w", err)
	}
	return nil
}

func (s *JSONLSink) Close() error { return nil }
