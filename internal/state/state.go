package state

import (
	"time"

	"github.com/opendroids/sparkd/internal/mood"
)

// SchemaVersion tags the persisted snapshot format.
const SchemaVersion = "1"

const (
	// batteryDrainPerTurn is the simulated charge cost of one turn.
	batteryDrainPerTurn = 0.1

	// maxRecentErrors bounds the recent-error ring.
	maxRecentErrors = 20
)

// Turn is a single completed (or abandoned) conversation cycle.
// Immutable once appended to history.
type Turn struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	InputText    string    `json:"input_text"`
	ResponseText string    `json:"response_text"`
	MoodAtTime   string    `json:"mood_at_time"`
	DurationMs   int64     `json:"duration_ms"`
	Succeeded    bool      `json:"succeeded"`
}

// MoodState is the persisted (mood, intensity) pair.
type MoodState struct {
	Name      string  `json:"name"`
	Intensity float64 `json:"intensity"`
}

// Stats holds the operational counters.
type Stats struct {
	TurnsProcessed int     `json:"turns_processed"`
	Errors         int     `json:"errors"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	AvgResponseMs  float64 `json:"avg_response_ms"`
}

// Flags holds the persisted control flags. A restart resumes prior pause and
// mute state; quit is runtime-only and deliberately absent here.
type Flags struct {
	Paused bool `json:"paused"`
	Muted  bool `json:"muted"`
}

// RobotState is the persistent aggregate. It is owned and mutated exclusively
// by the conversation engine's goroutine between turns, so it carries no lock.
type RobotState struct {
	Version      string    `json:"version"`
	Mood         MoodState `json:"mood"`
	BatteryLevel float64   `json:"battery_level"`
	History      []Turn    `json:"history"`
	Stats        Stats     `json:"stats"`
	Flags        Flags     `json:"flags"`
	RecentErrors []string  `json:"recent_errors,omitempty"`
	LastSaved    time.Time `json:"last_saved"`

	maxHistory int
	startedAt  time.Time
	baseUptime float64
}

// NewRobotState creates a default-initialized state.
func NewRobotState(maxHistory int) *RobotState {
	if maxHistory <= 0 {
		maxHistory = 10
	}
	return &RobotState{
		Version:      SchemaVersion,
		Mood:         MoodState{Name: string(mood.Neutral), Intensity: 0.5},
		BatteryLevel: 100.0,
		maxHistory:   maxHistory,
		startedAt:    time.Now().UTC(),
	}
}

// AppendTurn records a completed turn: appends to bounded history (oldest
// evicted first), bumps counters, updates the running response average, and
// drains the simulated battery.
func (s *RobotState) AppendTurn(t Turn) {
	s.History = append(s.History, t)
	for len(s.History) > s.maxHistory {
		s.History = s.History[1:]
	}

	s.Stats.TurnsProcessed++
	n := float64(s.Stats.TurnsProcessed)
	s.Stats.AvgResponseMs = s.Stats.AvgResponseMs*(n-1)/n + float64(t.DurationMs)/n

	s.BatteryLevel -= batteryDrainPerTurn
	if s.BatteryLevel < 0 {
		s.BatteryLevel = 0
	}
}

// RecordError bumps the error counter and keeps a bounded ring of recent
// error descriptions for the `e` control command.
func (s *RobotState) RecordError(msg string) {
	s.Stats.Errors++
	s.RecentErrors = append(s.RecentErrors, time.Now().UTC().Format(time.RFC3339)+": "+msg)
	for len(s.RecentErrors) > maxRecentErrors {
		s.RecentErrors = s.RecentErrors[1:]
	}
}

// SetMood records the engine's current (mood, intensity) pair.
func (s *RobotState) SetMood(m mood.Mood, intensity float64) {
	s.Mood = MoodState{Name: string(m), Intensity: intensity}
}

// RecentTurns returns up to n most recent turns, oldest first.
func (s *RobotState) RecentTurns(n int) []Turn {
	if n <= 0 || len(s.History) == 0 {
		return nil
	}
	if n > len(s.History) {
		n = len(s.History)
	}
	out := make([]Turn, n)
	copy(out, s.History[len(s.History)-n:])
	return out
}

// Reset clears history, stats and recent errors while preserving identity:
// version, mood, battery and control flags survive.
func (s *RobotState) Reset() {
	s.History = nil
	s.RecentErrors = nil
	s.Stats = Stats{}
	s.startedAt = time.Now().UTC()
	s.baseUptime = 0
}

// Uptime returns total accumulated uptime including prior runs.
func (s *RobotState) Uptime() time.Duration {
	return time.Duration((s.baseUptime + time.Since(s.startedAt).Seconds()) * float64(time.Second))
}

// MaxHistory returns the configured history bound.
func (s *RobotState) MaxHistory() int {
	return s.maxHistory
}
