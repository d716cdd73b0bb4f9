package cli

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/opendroids/sparkd/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}

	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoadOrCreateConfigExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sparkd.json")
	cfg := config.GenerateDefault()
	cfg.Voice.WakeWord = "spark"
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatal(err)
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	loaded, loadedPath, err := loadOrCreateConfig(path, quiet)
	if err != nil {
		t.Fatalf("loadOrCreateConfig() error = %v", err)
	}
	if loadedPath != path {
		t.Errorf("path = %s, want %s", loadedPath, path)
	}
	if loaded.Voice.WakeWord != "spark" {
		t.Errorf("wake word = %q, want spark", loaded.Voice.WakeWord)
	}
}

func TestLoadOrCreateConfigCreatesDefault(t *testing.T) {
	t.Chdir(t.TempDir())

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg, path, err := loadOrCreateConfig("", quiet)
	if err != nil {
		t.Fatalf("loadOrCreateConfig() error = %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config not written: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("generated default invalid: %v", err)
	}
}

func TestFindConfigInTreeWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0700); err != nil {
		t.Fatal(err)
	}

	cfgPath := filepath.Join(root, "sparkd.json")
	if err := config.GenerateDefault().SaveToFile(cfgPath); err != nil {
		t.Fatal(err)
	}

	t.Chdir(nested)

	found, err := findConfigInTree()
	if err != nil {
		t.Fatalf("findConfigInTree() error = %v", err)
	}
	if found != cfgPath {
		t.Errorf("found = %s, want %s", found, cfgPath)
	}
}

func TestInitRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	initCmd.SetOut(io.Discard)

	if err := runInit(initCmd, nil); err != nil {
		t.Fatalf("first init error = %v", err)
	}
	if err := runInit(initCmd, nil); err == nil {
		t.Error("second init should refuse to overwrite")
	}
}
