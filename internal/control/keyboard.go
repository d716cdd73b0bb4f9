package control

import (
	"context"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// Keyboard reads single keystrokes from its reader and maps them to control
// commands. It runs on its own goroutine and only mutates the plane.
type Keyboard struct {
	r      io.Reader
	plane  *Plane
	logger *slog.Logger
}

// NewKeyboard creates a keyboard listener reading from r (stdin in
// production, a scripted reader in tests).
func NewKeyboard(r io.Reader, plane *Plane, logger *slog.Logger) *Keyboard {
	return &Keyboard{
		r:      r,
		plane:  plane,
		logger: logger,
	}
}

// EnableRawMode puts the terminal with the given fd into raw mode so single
// keystrokes arrive without a newline. The returned restore function must be
// called before the process exits. Non-terminal fds return a no-op restore.
func EnableRawMode(fd int) (func(), error) {
	if !term.IsTerminal(fd) {
		return func() {}, nil
	}

	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}

	return func() { _ = term.Restore(fd, old) }, nil
}

// Run reads keys until the reader is exhausted or the context is cancelled.
func (k *Keyboard) Run(ctx context.Context) {
	buf := make([]byte, 1)

	for {
		n, err := k.r.Read(buf)
		if err != nil {
			if err != io.EOF {
				k.logger.Warn("keyboard read failed", "error", err)
			}
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}

		if n == 0 {
			continue
		}

		k.handleKey(buf[0])
	}
}

func (k *Keyboard) handleKey(key byte) {
	switch key {
	case ' ':
		paused := k.plane.TogglePause()
		k.logger.Info("pause toggled from keyboard", "paused", paused)
	case 'm':
		muted := k.plane.ToggleMute()
		k.logger.Info("mute toggled from keyboard", "muted", muted)
	case 'q', 0x03: // Ctrl-C arrives as a raw byte in raw mode
		k.plane.Submit(CmdQuit)
	case 'r':
		k.plane.Submit(CmdReset)
	case 's':
		k.plane.Submit(CmdStatus)
	case 'h':
		k.plane.Submit(CmdHelp)
	case 'c':
		k.plane.Submit(CmdConfig)
	case 'l':
		k.plane.Submit(CmdListTurns)
	case 'b':
		k.plane.Submit(CmdBattery)
	case 'e':
		k.plane.Submit(CmdErrors)
	case 't':
		k.plane.Submit(CmdTestTurn)
	case 'v':
		k.plane.Submit(CmdTestVoice)
	default:
		if key >= 0x20 && key < 0x7f {
			k.logger.Debug("unknown key, press 'h' for help", "key", string(key))
		}
	}
}

// Stdin returns the file descriptor of standard input for EnableRawMode.
func Stdin() int {
	return int(os.Stdin.Fd())
}
