package console

import (
	"strings"
	"testing"
	"time"

	"github.com/opendroids/sparkd/internal/config"
	"github.com/opendroids/sparkd/internal/mood"
	"github.com/opendroids/sparkd/internal/state"
)

func TestStatusBlock(t *testing.T) {
	st := state.NewRobotState(10)
	st.SetMood(mood.Helpful, 0.75)
	f := NewFormatter()

	got := f.Status(st, "IDLE", true, false)

	for _, want := range []string{
		"=== SYSTEM STATUS ===",
		"Activity: IDLE",
		"Current Mood: helpful (0.75)",
		"Battery: 100.0%",
		"Paused: Yes",
		"Muted: No",
		"Total Interactions: 0",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("status missing %q in:\n%s", want, got)
		}
	}
}

func TestAutoStatusLine(t *testing.T) {
	got := NewFormatter().AutoStatus("LISTENING", 99.9, 3)
	want := "[Status] LISTENING | Battery: 99.9% | Interactions: 3"
	if got != want {
		t.Errorf("AutoStatus = %q, want %q", got, want)
	}
}

func TestHelpListsEveryKey(t *testing.T) {
	got := NewFormatter().Help()

	for _, key := range []string{"SPACE", "q ", "r ", "s ", "m ", "h ", "c ", "l ", "b ", "e ", "t ", "v "} {
		if !strings.Contains(got, key) {
			t.Errorf("help missing key %q", strings.TrimSpace(key))
		}
	}
}

func TestConfigBlock(t *testing.T) {
	cfg := config.GenerateDefault()
	got := NewFormatter().Config(cfg)

	for _, want := range []string{
		"=== CONFIGURATION ===",
		"Wake Word: " + cfg.Voice.WakeWord,
		"Provider: template",
		"Control File: " + cfg.Control.FilePath,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("config block missing %q in:\n%s", want, got)
		}
	}
}

func TestRecentTurns(t *testing.T) {
	f := NewFormatter()

	if got := f.RecentTurns(nil); !strings.Contains(got, "(none yet)") {
		t.Errorf("empty history = %q", got)
	}

	turns := []state.Turn{
		{Timestamp: time.Now(), InputText: "hello", ResponseText: "hi there", Succeeded: true, DurationMs: 120},
		{Timestamp: time.Now(), InputText: "what", ResponseText: "sorry", Succeeded: false, DurationMs: 10},
	}

	got := f.RecentTurns(turns)
	if !strings.Contains(got, "you: hello") || !strings.Contains(got, "bot: hi there") {
		t.Errorf("turn lines missing from:\n%s", got)
	}
	if !strings.Contains(got, "failed") {
		t.Errorf("failed marker missing from:\n%s", got)
	}
}

func TestBatteryGauge(t *testing.T) {
	f := NewFormatter()

	full := f.Battery(100)
	if !strings.Contains(full, strings.Repeat("#", 20)) || !strings.Contains(full, "100.0%") {
		t.Errorf("full gauge = %q", full)
	}

	empty := f.Battery(0)
	if strings.Contains(empty, "#") {
		t.Errorf("empty gauge should have no fill: %q", empty)
	}

	half := f.Battery(50)
	if !strings.Contains(half, strings.Repeat("#", 10)+strings.Repeat("-", 10)) {
		t.Errorf("half gauge = %q", half)
	}
}

func TestRecentErrors(t *testing.T) {
	f := NewFormatter()

	if got := f.RecentErrors(nil); !strings.Contains(got, "(none)") {
		t.Errorf("empty errors = %q", got)
	}

	got := f.RecentErrors([]string{"2025-06-01T00:00:00Z speech glitch"})
	if !strings.Contains(got, "speech glitch") {
		t.Errorf("errors block = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(3*time.Hour + 4*time.Minute + 5*time.Second); got != "03:04:05" {
		t.Errorf("formatDuration = %q, want 03:04:05", got)
	}
}
