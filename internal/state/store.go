package state

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/opendroids/sparkd/internal/fsutil"
)

// Store loads and saves the RobotState snapshot.
type Store struct {
	path       string
	maxHistory int
	logger     *slog.Logger
}

// NewStore creates a store writing to the given snapshot path.
func NewStore(path string, maxHistory int, logger *slog.Logger) *Store {
	return &Store{
		path:       path,
		maxHistory: maxHistory,
		logger:     logger,
	}
}

// Load reads the snapshot from disk. A missing, unreadable or corrupt
// snapshot yields a default-initialized state with a warning; Load never
// fails to the caller.
func (s *Store) Load() *RobotState {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("no existing state snapshot, starting fresh", "path", s.path)
		} else {
			s.logger.Warn("failed to read state snapshot, starting fresh", "path", s.path, "error", err)
		}
		return NewRobotState(s.maxHistory)
	}

	var st RobotState
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn("state snapshot is corrupt, starting fresh", "path", s.path, "error", err)
		return NewRobotState(s.maxHistory)
	}

	st.maxHistory = s.maxHistory
	st.startedAt = time.Now().UTC()
	st.baseUptime = st.Stats.UptimeSeconds

	if st.Version == "" {
		st.Version = SchemaVersion
	}

	// Re-apply the eviction bound in case the configured maximum shrank.
	if len(st.History) > s.maxHistory {
		st.History = st.History[len(st.History)-s.maxHistory:]
	}

	s.logger.Info("state snapshot loaded",
		"path", s.path,
		"turns", st.Stats.TurnsProcessed,
		"history", len(st.History))

	return &st
}

// Save writes the full snapshot atomically. A failing write is retried once;
// a second failure is logged as a dropped checkpoint and returned, but
// callers treat it as non-fatal per the persistence error policy.
func (s *Store) Save(st *RobotState) error {
	st.Stats.UptimeSeconds = st.Uptime().Seconds()
	st.LastSaved = time.Now().UTC()

	err := fsutil.AtomicWriteJSON(s.path, st)
	if err == nil {
		return nil
	}

	s.logger.Warn("state save failed, retrying once", "path", s.path, "error", err)
	if err = fsutil.AtomicWriteJSON(s.path, st); err != nil {
		s.logger.Warn("state checkpoint dropped", "path", s.path, "error", err)
		return err
	}

	return nil
}
