// Package voice abstracts the audio boundary of the conversation loop. The
// engine only ever sees text: Listen blocks until an utterance is recognized
// or the context expires, Speak blocks until the response has been rendered.
package voice

import (
	"context"
	"errors"
)

// ErrNoSpeech is returned by Listen when the window elapsed without a
// recognizable utterance. Callers treat it as silence, not a failure.
var ErrNoSpeech = errors.New("no speech detected")

// Voice is the recognition and synthesis boundary.
type Voice interface {
	// Listen blocks until an utterance is recognized or ctx expires.
	// An empty window returns ErrNoSpeech.
	Listen(ctx context.Context) (string, error)

	// Speak renders the given text. A failed render is reported but the
	// turn that produced the text still counts.
	Speak(ctx context.Context, text string) error
}

// Options carries the audio tuning knobs handed to a voice backend. The
// text backends have no signal chain to tune, but they carry the values so
// a real audio backend slots into the same wiring.
type Options struct {
	WakeWord        string
	VADSensitivity  float64
	MicrophoneIndex int
}
