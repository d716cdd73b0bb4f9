package state

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/opendroids/sparkd/internal/mood"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "robot_state.json")
	store := NewStore(path, 10, testLogger())

	original := NewRobotState(10)
	original.AppendTurn(makeTurn(0, 120))
	original.RecordError("speech glitch")
	original.SetMood(mood.Helpful, 0.6)
	original.Flags.Paused = true
	original.Flags.Muted = true

	if err := store.Save(original); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded := store.Load()

	if loaded.Version != original.Version {
		t.Errorf("Version = %s, want %s", loaded.Version, original.Version)
	}

	if len(loaded.History) != 1 || loaded.History[0].InputText != "input 0" {
		t.Errorf("history not round-tripped: %+v", loaded.History)
	}

	if loaded.Mood.Name != string(mood.Helpful) || loaded.Mood.Intensity != 0.6 {
		t.Errorf("mood = %+v, want helpful/0.6", loaded.Mood)
	}

	if !loaded.Flags.Paused || !loaded.Flags.Muted {
		t.Error("flags not round-tripped")
	}

	if loaded.Stats.TurnsProcessed != 1 {
		t.Errorf("TurnsProcessed = %d, want 1", loaded.Stats.TurnsProcessed)
	}

	if len(loaded.RecentErrors) != 1 {
		t.Errorf("recent errors = %d, want 1", len(loaded.RecentErrors))
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "robot_state.json"), 10, testLogger())

	st := store.Load()
	if st == nil {
		t.Fatal("Load() returned nil")
	}

	if st.BatteryLevel != 100.0 {
		t.Errorf("BatteryLevel = %g, want fresh default 100", st.BatteryLevel)
	}
}

func TestLoadCorruptSnapshot(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "robot_state.json")

	if err := os.WriteFile(path, []byte(`{"version": "1", "hist`), 0600); err != nil {
		t.Fatal(err)
	}

	store := NewStore(path, 10, testLogger())
	st := store.Load()

	if st.Version != SchemaVersion || len(st.History) != 0 {
		t.Errorf("corrupt snapshot should yield defaults, got %+v", st)
	}
}

func TestLoadShrinksHistoryToBound(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "robot_state.json")

	big := NewStore(path, 10, testLogger())
	st := NewRobotState(10)
	for i := 0; i < 8; i++ {
		st.AppendTurn(makeTurn(i, 10))
	}
	if err := big.Save(st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	small := NewStore(path, 3, testLogger())
	loaded := small.Load()

	if len(loaded.History) != 3 {
		t.Fatalf("history length = %d, want 3 after shrink", len(loaded.History))
	}

	if loaded.History[0].ID != "turn-5" {
		t.Errorf("oldest kept turn = %s, want turn-5", loaded.History[0].ID)
	}
}

func TestUptimeAccumulatesAcrossRestarts(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "robot_state.json")
	store := NewStore(path, 10, testLogger())

	st := NewRobotState(10)
	st.baseUptime = 90 // simulate prior run time

	if err := store.Save(st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded := store.Load()
	if loaded.Uptime().Seconds() < 90 {
		t.Errorf("Uptime = %v, want >= 90s carried over", loaded.Uptime())
	}
}

func TestSaveIsIdempotent(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "robot_state.json")
	store := NewStore(path, 10, testLogger())

	st := NewRobotState(10)
	st.AppendTurn(makeTurn(0, 50))

	if err := store.Save(st); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}
	if err := store.Save(st); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	loaded := store.Load()
	if loaded.Stats.TurnsProcessed != 1 {
		t.Errorf("TurnsProcessed = %d, want 1", loaded.Stats.TurnsProcessed)
	}
}
