// Package console renders the human-readable blocks printed in response to
// display commands (status, help, config, history, battery, errors).
package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/opendroids/sparkd/internal/config"
	"github.com/opendroids/sparkd/internal/state"
)

// Formatter formats robot state for console display
type Formatter struct{}

// NewFormatter creates a new console formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Status renders the full status block.
func (f *Formatter) Status(st *state.RobotState, phase string, paused, muted bool) string {
	var b strings.Builder

	b.WriteString("=== SYSTEM STATUS ===\n")
	fmt.Fprintf(&b, "Uptime: %s\n", formatDuration(st.Uptime()))
	fmt.Fprintf(&b, "Activity: %s\n", phase)
	fmt.Fprintf(&b, "Current Mood: %s (%.2f)\n", st.Mood.Name, st.Mood.Intensity)
	fmt.Fprintf(&b, "Battery: %.1f%%\n", st.BatteryLevel)
	fmt.Fprintf(&b, "Paused: %s\n", yesNo(paused))
	fmt.Fprintf(&b, "Muted: %s\n", yesNo(muted))
	fmt.Fprintf(&b, "Total Interactions: %d\n", st.Stats.TurnsProcessed)
	fmt.Fprintf(&b, "Errors: %d\n", st.Stats.Errors)
	fmt.Fprintf(&b, "Avg Response: %.0f ms", st.Stats.AvgResponseMs)

	return b.String()
}

// AutoStatus renders the one-line periodic status.
func (f *Formatter) AutoStatus(phase string, battery float64, interactions int) string {
	return fmt.Sprintf("[Status] %s | Battery: %.1f%% | Interactions: %d", phase, battery, interactions)
}

// Help renders the keyboard command reference.
func (f *Formatter) Help() string {
	return strings.Join([]string{
		"=== HELP ===",
		"SPACE - Pause/Unpause voice processing",
		"q     - Quit application",
		"r     - Reset conversation state",
		"s     - Show current status/stats",
		"m     - Toggle mute mode",
		"h     - Show this help",
		"c     - Show configuration",
		"l     - List recent conversations",
		"b     - Show battery status",
		"e     - Show recent errors",
		"t     - Run a synthetic test turn",
		"v     - Test voice output",
	}, "\n")
}

// Config renders the active configuration.
func (f *Formatter) Config(cfg *config.Config) string {
	var b strings.Builder

	b.WriteString("=== CONFIGURATION ===\n")
	fmt.Fprintf(&b, "Data Dir: %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "Log Level: %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "Dev Mode: %s\n", yesNo(cfg.DevMode))
	fmt.Fprintf(&b, "Wake Word: %s\n", cfg.Voice.WakeWord)
	fmt.Fprintf(&b, "VAD Sensitivity: %.2f\n", cfg.Voice.VADSensitivity)
	fmt.Fprintf(&b, "Microphone Index: %d\n", cfg.Voice.MicrophoneIndex)
	fmt.Fprintf(&b, "Provider: %s\n", cfg.Generator.Provider)
	fmt.Fprintf(&b, "Max History: %d\n", cfg.Conversation.MaxHistory)
	fmt.Fprintf(&b, "Control File: %s", cfg.Control.FilePath)

	return b.String()
}

// RecentTurns renders the newest turns, most recent last.
func (f *Formatter) RecentTurns(turns []state.Turn) string {
	if len(turns) == 0 {
		return "=== RECENT CONVERSATIONS ===\n(none yet)"
	}

	var b strings.Builder
	b.WriteString("=== RECENT CONVERSATIONS ===")
	for _, turn := range turns {
		ok := "ok"
		if !turn.Succeeded {
			ok = "failed"
		}
		fmt.Fprintf(&b, "\n[%s] you: %s\n     bot: %s (%s, %d ms)",
			turn.Timestamp.Local().Format("15:04:05"), turn.InputText, turn.ResponseText, ok, turn.DurationMs)
	}
	return b.String()
}

// Battery renders the battery gauge.
func (f *Formatter) Battery(level float64) string {
	const width = 20
	filled := int(level / 100 * width)
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("#", filled) + strings.Repeat("-", width-filled)
	return fmt.Sprintf("Battery: [%s] %.1f%%", bar, level)
}

// RecentErrors renders the bounded error ring.
func (f *Formatter) RecentErrors(errs []string) string {
	if len(errs) == 0 {
		return "=== RECENT ERRORS ===\n(none)"
	}

	var b strings.Builder
	b.WriteString("=== RECENT ERRORS ===")
	for _, e := range errs {
		fmt.Fprintf(&b, "\n%s", e)
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
