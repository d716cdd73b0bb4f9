package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config represents the sparkd.json configuration file
type Config struct {
	Version      string       `json:"version"`
	DataDir      string       `json:"data_dir"`
	LogLevel     string       `json:"log_level"`
	DevMode      bool         `json:"dev_mode"`
	Conversation Conversation `json:"conversation"`
	Voice        Voice        `json:"voice"`
	Generator    Generator    `json:"generator"`
	Control      Control      `json:"control"`
}

// Conversation contains the workflow loop settings
type Conversation struct {
	MaxHistory         int `json:"max_history"`
	ListenTimeoutMs    int `json:"listen_timeout_ms"`
	GenerateTimeoutMs  int `json:"generate_timeout_ms"`
	SpeakTimeoutMs     int `json:"speak_timeout_ms"`
	RecognitionRetries int `json:"recognition_retries"`
	IdlePollMs         int `json:"idle_poll_ms"`
	ShutdownGraceMs    int `json:"shutdown_grace_ms"`
	StatusIntervalS    int `json:"status_interval_s"`
}

// Voice contains settings passed through to the voice adapter
type Voice struct {
	WakeWord        string  `json:"wake_word"`
	VADSensitivity  float64 `json:"vad_sensitivity"`
	MicrophoneIndex int     `json:"microphone_index"`
}

// Generator contains response generator settings
type Generator struct {
	Provider    string  `json:"provider"` // template, openai, anthropic
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int64   `json:"max_tokens"`
}

// Control contains control plane settings
type Control struct {
	FilePath       string `json:"file_path"`
	PollIntervalMs int    `json:"poll_interval_ms"`
	Keyboard       bool   `json:"keyboard"`
}

// GenerateDefault creates a new Config with default values
func GenerateDefault() *Config {
	return &Config{
		Version:  "1.0",
		DataDir:  "data",
		LogLevel: "info",
		DevMode:  true,
		Conversation: Conversation{
			MaxHistory:         10,
			ListenTimeoutMs:    10000,
			GenerateTimeoutMs:  30000,
			SpeakTimeoutMs:     20000,
			RecognitionRetries: 2,
			IdlePollMs:         100,
			ShutdownGraceMs:    2000,
			StatusIntervalS:    5,
		},
		Voice: Voice{
			WakeWord:        "",
			VADSensitivity:  0.5,
			MicrophoneIndex: 0,
		},
		Generator: Generator{
			Provider:    "template",
			Temperature: 0.8,
			MaxTokens:   200,
		},
		Control: Control{
			FilePath:       filepath.Join("data", "spark_control.txt"),
			PollIntervalMs: 500,
			Keyboard:       true,
		},
	}
}

// StatePath returns the path of the persisted state snapshot
func (c *Config) StatePath() string {
	return filepath.Join(c.DataDir, "robot_state.json")
}

// TurnLogPath returns the path of the append-only turn log
func (c *Config) TurnLogPath() string {
	return filepath.Join(c.DataDir, "turns.ndjson")
}

// Validate checks the configuration for errors and returns user-friendly error messages
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("configuration error: missing required field 'version'\n\nHint: Add a version field like:\n  \"version\": \"1.0\"")
	}

	if c.Conversation.MaxHistory <= 0 {
		return fmt.Errorf("configuration error: invalid 'conversation.max_history' value: %d\n\nHint: The history bound must be positive:\n  \"conversation\": {\n    \"max_history\": 10\n  }", c.Conversation.MaxHistory)
	}

	if c.Conversation.RecognitionRetries < 0 {
		return fmt.Errorf("configuration error: invalid 'conversation.recognition_retries' value: %d\n\nHint: The retry budget cannot be negative", c.Conversation.RecognitionRetries)
	}

	for name, ms := range map[string]int{
		"conversation.listen_timeout_ms":   c.Conversation.ListenTimeoutMs,
		"conversation.generate_timeout_ms": c.Conversation.GenerateTimeoutMs,
		"conversation.speak_timeout_ms":    c.Conversation.SpeakTimeoutMs,
		"conversation.idle_poll_ms":        c.Conversation.IdlePollMs,
		"conversation.shutdown_grace_ms":   c.Conversation.ShutdownGraceMs,
	} {
		if ms <= 0 {
			return fmt.Errorf("configuration error: invalid '%s' value: %d\n\nHint: Timeouts and intervals must be positive milliseconds", name, ms)
		}
	}

	switch c.Generator.Provider {
	case "template", "openai", "anthropic":
	default:
		return fmt.Errorf("configuration error: unknown 'generator.provider' value: %q\n\nHint: Supported providers:\n  \"generator\": {\n    \"provider\": \"template\" | \"openai\" | \"anthropic\"\n  }", c.Generator.Provider)
	}

	if c.Control.FilePath == "" {
		return fmt.Errorf("configuration error: missing required field 'control.file_path'\n\nHint: Point it at the control file:\n  \"control\": {\n    \"file_path\": \"data/spark_control.txt\"\n  }")
	}

	if c.Control.PollIntervalMs <= 0 {
		return fmt.Errorf("configuration error: invalid 'control.poll_interval_ms' value: %d\n\nHint: The control file poll cadence must be positive milliseconds (500 is the default)", c.Control.PollIntervalMs)
	}

	if c.Voice.VADSensitivity < 0 || c.Voice.VADSensitivity > 1 {
		return fmt.Errorf("configuration error: invalid 'voice.vad_sensitivity' value: %g\n\nHint: Sensitivity is a fraction between 0.0 and 1.0", c.Voice.VADSensitivity)
	}

	return nil
}

// LoadFromFile loads a configuration from a JSON file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

// SaveToFile writes the configuration to a JSON file with 0600 permissions
func (c *Config) SaveToFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// ApplyEnv overlays the environment variable surface onto the config.
// Unset variables leave the file-configured values untouched.
func (c *Config) ApplyEnv() {
	if v, ok := os.LookupEnv("WAKE_WORD"); ok {
		c.Voice.WakeWord = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := os.LookupEnv("VAD_SENSITIVITY"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Voice.VADSensitivity = f
		}
	}
	if v, ok := os.LookupEnv("MAX_CONVERSATION_HISTORY"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Conversation.MaxHistory = n
		}
	}
	if v, ok := os.LookupEnv("MICROPHONE_INDEX"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Voice.MicrophoneIndex = n
		}
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		c.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := os.LookupEnv("DEV_MODE"); ok {
		c.DevMode = strings.EqualFold(strings.TrimSpace(v), "true")
	}
	if v, ok := os.LookupEnv("OPENAI_MODEL"); ok && c.Generator.Provider == "openai" {
		c.Generator.Model = strings.TrimSpace(v)
	}
}
