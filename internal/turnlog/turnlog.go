// Package turnlog appends completed conversation turns to an NDJSON file,
// one JSON object per line. The log is append-only history for offline
// review; the bounded in-memory window lives in the state package.
package turnlog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/opendroids/sparkd/internal/state"
)

// Log writes turns to an NDJSON file.
type Log struct {
	file   *os.File
	logger *slog.Logger
	mu     sync.Mutex
}

// Open creates or opens the turn log for appending.
func Open(path string, logger *slog.Logger) (*Log, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open turn log: %w", err)
	}

	return &Log{file: file, logger: logger}, nil
}

// Append writes one turn as a single NDJSON line.
func (l *Log) Append(turn state.Turn) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to encode turn: %w", err)
	}
	data = append(data, '\n')

	if _, err := l.file.Write(data); err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
