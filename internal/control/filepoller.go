package control

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// FilePoller watches a well-known control file on a fixed interval. Non-empty
// content is read as one command token, the file is truncated, and the token
// is submitted to the plane. Commands written between two polls overwrite
// each other: delivery is at-most-one-per-poll, last write wins.
type FilePoller struct {
	path     string
	interval time.Duration
	plane    *Plane
	logger   *slog.Logger
}

// NewFilePoller creates a poller for the given control file.
func NewFilePoller(path string, interval time.Duration, plane *Plane, logger *slog.Logger) *FilePoller {
	return &FilePoller{
		path:     path,
		interval: interval,
		plane:    plane,
		logger:   logger,
	}
}

// Run polls until the context is cancelled. Producer only: it never blocks
// the engine's loop.
func (f *FilePoller) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.pollOnce()
		}
	}
}

func (f *FilePoller) pollOnce() {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.logger.Warn("failed to read control file", "path", f.path, "error", err)
		}
		return
	}

	raw := string(data)
	if len(raw) == 0 {
		return
	}

	// Clear before acting so a slow command handler cannot double-consume.
	if err := os.WriteFile(f.path, nil, 0600); err != nil {
		f.logger.Warn("failed to clear control file", "path", f.path, "error", err)
	}

	cmd, ok := ParseToken(raw)
	if !ok {
		f.logger.Debug("discarding unrecognized control file content", "content", raw)
		return
	}

	f.logger.Info("control file command received", "command", cmd)
	f.plane.Submit(cmd)
}
