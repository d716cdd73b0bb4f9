package voice

import (
	"context"
	"sync"
)

// Mock is a scripted voice backend used by tests and development mode.
// Listen returns scripted utterances in order; once the script is exhausted
// every further Listen reports silence. Speak records the rendered text.
type Mock struct {
	mu     sync.Mutex
	script []string
	pos    int
	spoken []string

	// ListenErr, when set, is returned by every Listen call.
	ListenErr error
	// SpeakErr, when set, is returned by every Speak call.
	SpeakErr error
}

// NewMock creates a mock backend that will hear the given utterances in
// order. An empty script hears only silence.
func NewMock(script ...string) *Mock {
	return &Mock{script: script}
}

func (m *Mock) Listen(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListenErr != nil {
		return "", m.ListenErr
	}

	if m.pos >= len(m.script) {
		return "", ErrNoSpeech
	}

	utterance := m.script[m.pos]
	m.pos++

	if utterance == "" {
		return "", ErrNoSpeech
	}

	return utterance, nil
}

func (m *Mock) Speak(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SpeakErr != nil {
		return m.SpeakErr
	}

	m.spoken = append(m.spoken, text)
	return nil
}

// Spoken returns a copy of everything rendered so far.
func (m *Mock) Spoken() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.spoken))
	copy(out, m.spoken)
	return out
}

// Exhausted reports whether the script has been fully consumed.
func (m *Mock) Exhausted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos >= len(m.script)
}
