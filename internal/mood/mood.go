package mood

// Mood represents the robot's emotional tone, consumed when selecting
// response style. Values match the persisted snapshot format.
type Mood string

const (
	Neutral     Mood = "neutral"
	Happy       Mood = "happy"
	Helpful     Mood = "helpful"
	Confused    Mood = "confused"
	Sarcastic   Mood = "sarcastic"
	Existential Mood = "existential_crisis"
)

// Event is a discrete interaction outcome that drives a mood transition.
type Event string

const (
	TurnSucceeded Event = "turn_succeeded"
	TurnFailed    Event = "turn_failed"
	IdleTimeout   Event = "idle_timeout"
)

const (
	// MinIntensity and MaxIntensity bound the intensity scalar.
	MinIntensity = 0.0
	MaxIntensity = 1.0
)

type transition struct {
	next  Mood
	delta float64
}

// table is the fixed lookup driving every transition. Each (mood, event)
// pair maps to exactly one successor; intensity deltas are clamped.
var table = map[Mood]map[Event]transition{
	Neutral: {
		TurnSucceeded: {Helpful, 0.10},
		TurnFailed:    {Confused, 0.15},
		IdleTimeout:   {Neutral, -0.10},
	},
	Happy: {
		TurnSucceeded: {Happy, 0.10},
		TurnFailed:    {Neutral, -0.10},
		IdleTimeout:   {Neutral, -0.10},
	},
	Helpful: {
		TurnSucceeded: {Happy, 0.10},
		TurnFailed:    {Confused, 0.10},
		IdleTimeout:   {Neutral, -0.05},
	},
	Confused: {
		TurnSucceeded: {Neutral, 0.10},
		TurnFailed:    {Sarcastic, 0.15},
		IdleTimeout:   {Neutral, -0.10},
	},
	Sarcastic: {
		TurnSucceeded: {Helpful, 0.05},
		TurnFailed:    {Existential, 0.20},
		IdleTimeout:   {Sarcastic, -0.10},
	},
	Existential: {
		TurnSucceeded: {Neutral, 0.20},
		TurnFailed:    {Existential, 0.10},
		IdleTimeout:   {Sarcastic, -0.10},
	},
}

// Engine is a small deterministic state machine owning the (mood, intensity)
// pair. No other component mutates mood directly.
type Engine struct {
	current   Mood
	intensity float64
}

// NewEngine creates an engine seeded from a persisted (mood, intensity) pair.
// Unknown moods fall back to neutral; intensity is clamped into range.
func NewEngine(initial Mood, intensity float64) *Engine {
	if _, ok := table[initial]; !ok {
		initial = Neutral
	}
	return &Engine{
		current:   initial,
		intensity: clamp(intensity),
	}
}

// Apply transitions the engine on an event and returns the new pair.
func (e *Engine) Apply(ev Event) (Mood, float64) {
	tr, ok := table[e.current][ev]
	if !ok {
		// Unknown events leave the pair untouched.
		return e.current, e.intensity
	}

	e.current = tr.next
	e.intensity = clamp(e.intensity + tr.delta)

	return e.current, e.intensity
}

// Current returns the pair without transitioning.
func (e *Engine) Current() (Mood, float64) {
	return e.current, e.intensity
}

func clamp(v float64) float64 {
	if v < MinIntensity {
		return MinIntensity
	}
	if v > MaxIntensity {
		return MaxIntensity
	}
	return v
}
