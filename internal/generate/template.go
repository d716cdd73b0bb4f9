package generate

import (
	"context"
	"strings"
	"time"

	"github.com/opendroids/sparkd/internal/persona"
)

// Template is the offline generator. It matches a few keyword families and
// otherwise leans on the persona's canned templates, so the robot keeps
// talking with no API key configured.
type Template struct {
	persona *persona.Persona
	now     func() time.Time
}

// NewTemplate creates the offline generator. now is injectable for the
// clock answer; pass nil for time.Now.
func NewTemplate(p *persona.Persona, now func() time.Time) *Template {
	if now == nil {
		now = time.Now
	}
	return &Template{persona: p, now: now}
}

func (t *Template) Name() string { return "template" }

func (t *Template) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	input := strings.ToLower(req.Input)

	switch {
	case containsAny(input, "hello", "hi ", "hey") || input == "hi":
		return t.persona.Response(persona.Greeting, ""), nil
	case containsAny(input, "bye", "goodbye", "see you"):
		return t.persona.Response(persona.Farewell, ""), nil
	case containsAny(input, "weather", "temperature"):
		return "I'd check the weather for you, but my meteorological sensors are offline.", nil
	case containsAny(input, "time", "clock"):
		return "The current time is " + t.now().Format("15:04") + ".", nil
	case containsAny(input, "joke", "funny"):
		return "Why did the robot go to the doctor? Because it had a virus!", nil
	case containsAny(input, "help", "how do", "how can"):
		return t.persona.Response(persona.Helpful, req.Input), nil
	default:
		return "I'm not sure how to respond to '" + req.Input + "'. Let's regroup and try again.", nil
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
