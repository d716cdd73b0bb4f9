// Package engine drives the listen, process, respond, speak cycle. One
// goroutine owns the loop and the robot state; the control plane is the only
// shared surface, consulted at phase boundaries.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opendroids/sparkd/internal/config"
	"github.com/opendroids/sparkd/internal/console"
	"github.com/opendroids/sparkd/internal/control"
	"github.com/opendroids/sparkd/internal/generate"
	"github.com/opendroids/sparkd/internal/mood"
	"github.com/opendroids/sparkd/internal/persona"
	"github.com/opendroids/sparkd/internal/state"
	"github.com/opendroids/sparkd/internal/turnlog"
	"github.com/opendroids/sparkd/internal/voice"
)

// Phase is the engine's current position in the conversation cycle.
type Phase string

const (
	PhaseIdle       Phase = "IDLE"
	PhaseListening  Phase = "LISTENING"
	PhaseProcessing Phase = "PROCESSING"
	PhaseResponding Phase = "RESPONDING"
	PhaseSpeaking   Phase = "SPEAKING"
	PhaseError      Phase = "ERROR"
	PhaseShutdown   Phase = "SHUTDOWN"
)

// historyWindow is how many prior turns are handed to the generator.
const historyWindow = 6

// testTurnInput is the synthetic utterance injected by the `t` command.
const testTurnInput = "hello, run a quick self test"

// Deps wires the engine's collaborators.
type Deps struct {
	Config    *config.Config
	State     *state.RobotState
	Store     *state.Store
	Moods     *mood.Engine
	Plane     *control.Plane
	Voice     voice.Voice
	Generator generate.Generator
	Persona   *persona.Persona
	TurnLog   *turnlog.Log // optional
	Logger    *slog.Logger
	Out       io.Writer
}

// Engine is the conversation loop driver. Not safe for concurrent use; Run
// is the single owner of the state aggregate.
type Engine struct {
	cfg    *config.Config
	st     *state.RobotState
	store  *state.Store
	moods  *mood.Engine
	plane  *control.Plane
	voice  voice.Voice
	gen    generate.Generator
	pers   *persona.Persona
	turns  *turnlog.Log
	logger *slog.Logger
	out    io.Writer
	fmtr   *console.Formatter

	phase          Phase
	lastAutoStatus time.Time
	lastActivity   time.Time
	idleMoodEvery  time.Duration
	persistedFlags state.Flags

	newID func() string
	now   func() time.Time
}

// New creates an engine from its dependencies.
func New(d Deps) *Engine {
	return &Engine{
		cfg:           d.Config,
		st:            d.State,
		store:         d.Store,
		moods:         d.Moods,
		plane:         d.Plane,
		voice:         d.Voice,
		gen:           d.Generator,
		pers:          d.Persona,
		turns:         d.TurnLog,
		logger:        d.Logger,
		out:           d.Out,
		fmtr:          console.NewFormatter(),
		phase:         PhaseIdle,
		idleMoodEvery: 30 * time.Second,
		newID:         uuid.NewString,
		now:           time.Now,
	}
}

// Run drives the loop until quit is requested or the context is cancelled.
// A quit request gives the in-flight phase a grace period before the loop's
// contexts are cancelled out from under it.
func (e *Engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	grace := time.Duration(e.cfg.Conversation.ShutdownGraceMs) * time.Millisecond
	go func() {
		select {
		case <-e.plane.Quit():
			timer := time.NewTimer(grace)
			defer timer.Stop()
			select {
			case <-timer.C:
				cancel()
			case <-ctx.Done():
			}
		case <-ctx.Done():
		}
	}()

	idlePoll := time.Duration(e.cfg.Conversation.IdlePollMs) * time.Millisecond
	e.lastAutoStatus = e.now()
	e.lastActivity = e.now()
	e.persistedFlags = e.st.Flags

	e.logger.Info("conversation loop started",
		"provider", e.gen.Name(),
		"wake_word", e.cfg.Voice.WakeWord,
		"max_history", e.st.MaxHistory())

	for {
		paused, muted, quit := e.plane.Flags()
		if quit || ctx.Err() != nil {
			return e.shutdown()
		}
		e.persistFlagChange(paused, muted)

		if cmd, ok := e.plane.NextCommand(); ok {
			e.handleCommand(ctx, cmd, paused, muted)
		}
		e.maybeAutoStatus(paused)
		e.maybeIdleMood()

		if paused {
			e.setPhase(PhaseIdle)
			select {
			case <-ctx.Done():
				return e.shutdown()
			case <-time.After(idlePoll):
			}
			continue
		}

		e.setPhase(PhaseListening)
		input, err := e.listen(ctx)
		if err != nil {
			if errors.Is(err, voice.ErrNoSpeech) {
				e.setPhase(PhaseIdle)
				select {
				case <-ctx.Done():
					return e.shutdown()
				case <-time.After(idlePoll):
				}
				continue
			}
			if ctx.Err() != nil {
				return e.shutdown()
			}
			e.setPhase(PhaseError)
			e.st.RecordError("listen: " + err.Error())
			e.applyMood(mood.TurnFailed)
			e.recordAbandonedTurn()
			select {
			case <-ctx.Done():
				return e.shutdown()
			case <-time.After(idlePoll):
			}
			continue
		}

		if !e.wakeWordPresent(input) {
			e.logger.Debug("utterance without wake word ignored", "input", input)
			continue
		}

		e.lastActivity = e.now()
		e.runTurn(ctx, input)
	}
}

// listen captures one utterance, retrying transient recognition failures up
// to the configured budget. Silence and cancellation are not retried.
func (e *Engine) listen(ctx context.Context) (string, error) {
	timeout := time.Duration(e.cfg.Conversation.ListenTimeoutMs) * time.Millisecond
	retries := e.cfg.Conversation.RecognitionRetries

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		lctx, cancel := context.WithTimeout(ctx, timeout)
		text, err := e.voice.Listen(lctx)
		cancel()

		if err == nil {
			return text, nil
		}
		if errors.Is(err, voice.ErrNoSpeech) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", voice.ErrNoSpeech
		}

		lastErr = err
		e.logger.Warn("recognition failed", "attempt", attempt+1, "error", err)
	}

	return "", fmt.Errorf("recognition failed after %d attempts: %w", retries+1, lastErr)
}

// runTurn takes one recognized utterance through processing and speech and
// records the outcome. Failures inside the turn never abort the loop. The
// mute flag is re-read at the SPEAKING boundary, so a mute issued while the
// response was being generated still suppresses it.
func (e *Engine) runTurn(ctx context.Context, input string) {
	start := e.now()
	succeeded := true

	e.setPhase(PhaseProcessing)
	gctx, gcancel := context.WithTimeout(ctx, time.Duration(e.cfg.Conversation.GenerateTimeoutMs)*time.Millisecond)
	text, err := e.gen.Generate(gctx, generate.Request{Input: input, History: e.exchanges()})
	gcancel()
	if err != nil {
		succeeded = false
		text = persona.Apology
		e.st.RecordError("generate: " + err.Error())
		e.logger.Warn("response generation failed", "error", err)
	}

	e.setPhase(PhaseResponding)

	e.setPhase(PhaseSpeaking)
	_, muted, _ := e.plane.Flags()
	if muted {
		e.logger.Info("muted, response recorded but not spoken", "text", text)
	} else {
		sctx, scancel := context.WithTimeout(ctx, time.Duration(e.cfg.Conversation.SpeakTimeoutMs)*time.Millisecond)
		if err := e.voice.Speak(sctx, text); err != nil {
			succeeded = false
			e.st.RecordError("speak: " + err.Error())
			e.logger.Warn("speech output failed", "error", err)
		}
		scancel()
	}

	if succeeded {
		e.applyMood(mood.TurnSucceeded)
	} else {
		e.applyMood(mood.TurnFailed)
	}

	turn := state.Turn{
		ID:           e.newID(),
		Timestamp:    start.UTC(),
		InputText:    input,
		ResponseText: text,
		MoodAtTime:   e.st.Mood.Name,
		DurationMs:   e.now().Sub(start).Milliseconds(),
		Succeeded:    succeeded,
	}
	e.st.AppendTurn(turn)

	if e.turns != nil {
		if err := e.turns.Append(turn); err != nil {
			e.logger.Warn("turn log append failed", "error", err)
		}
	}

	e.checkpoint()

	e.logger.Info("turn completed",
		"turn_id", turn.ID,
		"succeeded", succeeded,
		"duration_ms", turn.DurationMs,
		"mood", e.st.Mood.Name)
}

func (e *Engine) handleCommand(ctx context.Context, cmd control.Command, paused, muted bool) {
	switch cmd {
	case control.CmdStatus:
		fmt.Fprintln(e.out, e.fmtr.Status(e.st, string(e.phase), paused, muted))
	case control.CmdHelp:
		fmt.Fprintln(e.out, e.fmtr.Help())
	case control.CmdConfig:
		fmt.Fprintln(e.out, e.fmtr.Config(e.cfg))
	case control.CmdListTurns:
		fmt.Fprintln(e.out, e.fmtr.RecentTurns(e.st.RecentTurns(5)))
	case control.CmdBattery:
		fmt.Fprintln(e.out, e.fmtr.Battery(e.st.BatteryLevel))
	case control.CmdErrors:
		fmt.Fprintln(e.out, e.fmtr.RecentErrors(e.st.RecentErrors))
	case control.CmdReset:
		e.st.Reset()
		e.checkpoint()
		e.logger.Info("conversation state reset")
	case control.CmdTestTurn:
		e.runTurn(ctx, testTurnInput)
	case control.CmdTestVoice:
		e.testVoice(ctx)
	default:
		e.logger.Debug("unhandled control command", "command", cmd)
	}
}

func (e *Engine) testVoice(ctx context.Context) {
	phrase := e.pers.VoiceTestPhrase()
	if _, muted, _ := e.plane.Flags(); muted {
		fmt.Fprintln(e.out, "muted, voice test skipped")
		return
	}

	sctx, cancel := context.WithTimeout(ctx, time.Duration(e.cfg.Conversation.SpeakTimeoutMs)*time.Millisecond)
	defer cancel()

	if err := e.voice.Speak(sctx, phrase); err != nil {
		e.st.RecordError("voice test: " + err.Error())
		e.logger.Warn("voice test failed", "error", err)
		return
	}
	e.logger.Info("voice test ok", "phrase", phrase)
}

func (e *Engine) maybeAutoStatus(paused bool) {
	interval := time.Duration(e.cfg.Conversation.StatusIntervalS) * time.Second
	if paused || interval <= 0 || e.now().Sub(e.lastAutoStatus) < interval {
		return
	}
	e.lastAutoStatus = e.now()
	fmt.Fprintln(e.out, e.fmtr.AutoStatus(string(e.phase), e.st.BatteryLevel, e.st.Stats.TurnsProcessed))
}

// recordAbandonedTurn keeps a cycle that gave up before producing an
// utterance visible in history and in the turn log.
func (e *Engine) recordAbandonedTurn() {
	turn := state.Turn{
		ID:         e.newID(),
		Timestamp:  e.now().UTC(),
		MoodAtTime: e.st.Mood.Name,
		Succeeded:  false,
	}
	e.st.AppendTurn(turn)

	if e.turns != nil {
		if err := e.turns.Append(turn); err != nil {
			e.logger.Warn("turn log append failed", "error", err)
		}
	}

	e.checkpoint()
}

// persistFlagChange checkpoints when pause or mute flipped since the last
// persisted snapshot, so a crash cannot lose a flag change.
func (e *Engine) persistFlagChange(paused, muted bool) {
	if (state.Flags{Paused: paused, Muted: muted}) == e.persistedFlags {
		return
	}
	e.checkpoint()
}

// maybeIdleMood lets a long silence drift the mood back toward neutral.
func (e *Engine) maybeIdleMood() {
	if e.now().Sub(e.lastActivity) < e.idleMoodEvery {
		return
	}
	e.lastActivity = e.now()
	e.applyMood(mood.IdleTimeout)
}

func (e *Engine) applyMood(ev mood.Event) {
	m, intensity := e.moods.Apply(ev)
	e.st.SetMood(m, intensity)
}

func (e *Engine) wakeWordPresent(input string) bool {
	ww := e.cfg.Voice.WakeWord
	if ww == "" {
		return true
	}
	return strings.Contains(strings.ToLower(input), strings.ToLower(ww))
}

func (e *Engine) exchanges() []generate.Exchange {
	turns := e.st.RecentTurns(historyWindow)
	out := make([]generate.Exchange, 0, len(turns))
	for _, t := range turns {
		out = append(out, generate.Exchange{User: t.InputText, Robot: t.ResponseText})
	}
	return out
}

// checkpoint persists flags and state. A dropped checkpoint is logged by the
// store and does not stop the loop.
func (e *Engine) checkpoint() {
	paused, muted, _ := e.plane.Flags()
	e.st.Flags = state.Flags{Paused: paused, Muted: muted}
	e.persistedFlags = e.st.Flags
	_ = e.store.Save(e.st)
}

func (e *Engine) shutdown() error {
	e.setPhase(PhaseShutdown)
	paused, muted, _ := e.plane.Flags()
	e.st.Flags = state.Flags{Paused: paused, Muted: muted}

	if err := e.store.Save(e.st); err != nil {
		return fmt.Errorf("final state flush failed: %w", err)
	}

	e.logger.Info("shutdown complete",
		"turns", e.st.Stats.TurnsProcessed,
		"uptime", e.st.Uptime().Round(time.Second).String())
	return nil
}

func (e *Engine) setPhase(p Phase) {
	if e.phase == p {
		return
	}
	e.phase = p
	e.logger.Debug("phase change", "phase", string(p))
}
