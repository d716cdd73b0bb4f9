// Package generate produces the robot's reply text for a processed
// utterance. The template generator works offline; the OpenAI and Anthropic
// generators call their APIs and fall back to the template generator when
// the provider misbehaves.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrProvider marks a failure from a live provider with no fallback
// available. The engine substitutes the apology line when it sees this.
var ErrProvider = errors.New("response provider failed")

// Exchange is one prior user/robot pair handed to a generator as context.
type Exchange struct {
	User  string
	Robot string
}

// Request carries the utterance plus the recent conversation.
type Request struct {
	Input   string
	History []Exchange
}

// Generator turns an utterance into reply text.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// historySnippet renders the recent conversation for a model prompt.
func historySnippet(history []Exchange) string {
	if len(history) == 0 {
		return "No previous conversation. This is the first turn."
	}

	var b strings.Builder
	for _, ex := range history {
		fmt.Fprintf(&b, "User: %s\nRobot: %s\n", ex.User, ex.Robot)
	}
	return strings.TrimRight(b.String(), "\n")
}

// userPrompt builds the single user message sent to live providers.
func userPrompt(req Request) string {
	return fmt.Sprintf(
		"Recent conversation:\n%s\n\nCurrent user message: %s\n\n"+
			"Keep responses under 70 words and do not prefix the response with your name or any speaker label.",
		historySnippet(req.History), req.Input)
}
