// Package control merges keyboard-driven and file-polled external commands
// into a single shared command queue and shared flags consumed by the
// conversation engine at phase boundaries. Producers only mutate flags and
// the queue; they never call into the workflow.
package control

import (
	"log/slog"
	"strings"
	"sync"
)

// Command is an external control command, consumed exactly once.
type Command string

const (
	CmdPause     Command = "pause"
	CmdUnpause   Command = "unpause"
	CmdMute      Command = "mute"
	CmdUnmute    Command = "unmute"
	CmdReset     Command = "reset"
	CmdQuit      Command = "quit"
	CmdStatus    Command = "status"
	CmdHelp      Command = "help"
	CmdConfig    Command = "config"
	CmdListTurns Command = "list"
	CmdBattery   Command = "battery"
	CmdErrors    Command = "errors"
	CmdTestTurn  Command = "test-turn"
	CmdTestVoice Command = "test-voice"
)

// maxQueued bounds the pending command queue. Flag commands never queue, so
// saturation only ever drops display commands (oldest first).
const maxQueued = 16

// tokens maps recognized control-file content to commands. The file contract
// is case-insensitive with whitespace trimmed; resume and exit are aliases.
var tokens = map[string]Command{
	"pause":   CmdPause,
	"unpause": CmdUnpause,
	"resume":  CmdUnpause,
	"mute":    CmdMute,
	"unmute":  CmdUnmute,
	"reset":   CmdReset,
	"quit":    CmdQuit,
	"exit":    CmdQuit,
	"status":  CmdStatus,
	"help":    CmdHelp,
}

// ParseToken maps raw control-file content to a Command.
// Unrecognized content is discarded by callers, not an error.
func ParseToken(raw string) (Command, bool) {
	cmd, ok := tokens[strings.ToLower(strings.TrimSpace(raw))]
	return cmd, ok
}

// Plane is the shared state between the two producers (keyboard, file
// poller) and the engine. One coarse mutex guards the flags and the queue;
// the engine reads flags with snapshot semantics at phase boundaries.
type Plane struct {
	logger *slog.Logger

	mu            sync.Mutex
	paused        bool
	muted         bool
	quitRequested bool
	queue         []Command

	quitOnce sync.Once
	quitCh   chan struct{}
}

// NewPlane creates an empty control plane.
func NewPlane(logger *slog.Logger) *Plane {
	return &Plane{
		logger: logger,
		quitCh: make(chan struct{}),
	}
}

// RestoreFlags seeds the persisted pause/mute flags at startup.
func (p *Plane) RestoreFlags(paused, muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = paused
	p.muted = muted
}

// Submit applies a command from a producer. Flag commands mutate flags
// directly (idempotently); quit additionally closes the quit channel and is
// never cleared. Everything else is queued for the next phase boundary.
func (p *Plane) Submit(cmd Command) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch cmd {
	case CmdPause:
		p.paused = true
	case CmdUnpause:
		p.paused = false
	case CmdMute:
		p.muted = true
	case CmdUnmute:
		p.muted = false
	case CmdQuit:
		p.quitRequested = true
		p.quitOnce.Do(func() { close(p.quitCh) })
	default:
		if len(p.queue) >= maxQueued {
			p.logger.Warn("control queue full, dropping oldest pending command", "dropped", p.queue[0])
			p.queue = p.queue[1:]
		}
		p.queue = append(p.queue, cmd)
	}
}

// TogglePause flips the pause flag and returns the new value.
func (p *Plane) TogglePause() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = !p.paused
	return p.paused
}

// ToggleMute flips the mute flag and returns the new value.
func (p *Plane) ToggleMute() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = !p.muted
	return p.muted
}

// Flags returns a snapshot of the three flags. A flag changed after the
// snapshot does not affect a phase already in progress.
func (p *Plane) Flags() (paused, muted, quitRequested bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused, p.muted, p.quitRequested
}

// NextCommand pops at most one pending command.
func (p *Plane) NextCommand() (Command, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.queue) == 0 {
		return "", false
	}

	cmd := p.queue[0]
	p.queue = p.queue[1:]
	return cmd, true
}

// Quit returns a channel closed once a quit has been requested.
func (p *Plane) Quit() <-chan struct{} {
	return p.quitCh
}
