package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateDefault(t *testing.T) {
	cfg := GenerateDefault()

	if cfg.Version != "1.0" {
		t.Errorf("Version = %s, want 1.0", cfg.Version)
	}

	if cfg.Conversation.MaxHistory != 10 {
		t.Errorf("MaxHistory = %d, want 10", cfg.Conversation.MaxHistory)
	}

	if cfg.Control.PollIntervalMs != 500 {
		t.Errorf("PollIntervalMs = %d, want 500", cfg.Control.PollIntervalMs)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "sparkd.json")

	original := GenerateDefault()
	original.Generator.Provider = "openai"
	original.Generator.Model = "gpt-4o-mini"

	if err := original.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if loaded.Generator.Provider != "openai" {
		t.Errorf("Provider = %s, want openai", loaded.Generator.Provider)
	}

	if loaded.Generator.Model != "gpt-4o-mini" {
		t.Errorf("Model = %s, want gpt-4o-mini", loaded.Generator.Model)
	}
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := GenerateDefault()
	cfg.Generator.Provider = "carrier-pigeon"

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for unknown provider, got nil")
	}
}

func TestValidateRejectsNonPositiveHistory(t *testing.T) {
	cfg := GenerateDefault()
	cfg.Conversation.MaxHistory = 0

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for zero max_history, got nil")
	}
}

func TestValidateRejectsBadSensitivity(t *testing.T) {
	cfg := GenerateDefault()
	cfg.Voice.VADSensitivity = 1.5

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for out-of-range vad_sensitivity, got nil")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("WAKE_WORD", "Hey Spark ")
	t.Setenv("MAX_CONVERSATION_HISTORY", "5")
	t.Setenv("DEV_MODE", "false")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := GenerateDefault()
	cfg.ApplyEnv()

	if cfg.Voice.WakeWord != "hey spark" {
		t.Errorf("WakeWord = %q, want %q", cfg.Voice.WakeWord, "hey spark")
	}

	if cfg.Conversation.MaxHistory != 5 {
		t.Errorf("MaxHistory = %d, want 5", cfg.Conversation.MaxHistory)
	}

	if cfg.DevMode {
		t.Error("DevMode = true, want false")
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestApplyEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("MAX_CONVERSATION_HISTORY", "not-a-number")

	cfg := GenerateDefault()
	cfg.ApplyEnv()

	if cfg.Conversation.MaxHistory != 10 {
		t.Errorf("MaxHistory = %d, want 10 (unparseable override ignored)", cfg.Conversation.MaxHistory)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("LoadFromFile() expected error for missing file, got nil")
	}
}

func TestStatePaths(t *testing.T) {
	cfg := GenerateDefault()
	cfg.DataDir = "d"

	if got := cfg.StatePath(); got != filepath.Join("d", "robot_state.json") {
		t.Errorf("StatePath() = %s", got)
	}

	if got := cfg.TurnLogPath(); got != filepath.Join("d", "turns.ndjson") {
		t.Errorf("TurnLogPath() = %s", got)
	}
}

func TestSaveToFilePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "sparkd.json")

	if err := GenerateDefault().SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}

	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 0600", perm)
	}
}
