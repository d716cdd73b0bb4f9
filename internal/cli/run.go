package cli

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/opendroids/sparkd/internal/config"
	"github.com/opendroids/sparkd/internal/control"
	"github.com/opendroids/sparkd/internal/engine"
	"github.com/opendroids/sparkd/internal/generate"
	"github.com/opendroids/sparkd/internal/mood"
	"github.com/opendroids/sparkd/internal/persona"
	"github.com/opendroids/sparkd/internal/state"
	"github.com/opendroids/sparkd/internal/turnlog"
	"github.com/opendroids/sparkd/internal/voice"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the conversation loop",
	Long: `Start the conversation loop. The robot listens for speech, generates a
response in the R2D3 voice, and speaks it, until quit is requested from the
keyboard, the control file, or a signal.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	bootLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, cfgPath, err := loadOrCreateConfig(configPath, bootLogger)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	logger.Info("loaded configuration", "path", cfgPath, "dev_mode", cfg.DevMode)

	// Development mode keeps everything offline: typed text in, printed
	// text out, canned templates for responses.
	if cfg.DevMode && cfg.Generator.Provider != "template" {
		logger.Info("dev mode forces the template provider", "configured", cfg.Generator.Provider)
		cfg.Generator.Provider = "template"
	}

	store := state.NewStore(cfg.StatePath(), cfg.Conversation.MaxHistory, logger)
	st := store.Load()

	plane := control.NewPlane(logger)
	plane.RestoreFlags(st.Flags.Paused, st.Flags.Muted)

	moods := mood.NewEngine(mood.Mood(st.Mood.Name), st.Mood.Intensity)
	pers := persona.New(rand.New(rand.NewSource(time.Now().UnixNano())))

	gen := buildGenerator(cfg, pers, logger)

	var vc voice.Voice
	if cfg.DevMode {
		vc = voice.NewConsole(os.Stdin, cmd.OutOrStdout(), voice.Options{
			WakeWord:        cfg.Voice.WakeWord,
			VADSensitivity:  cfg.Voice.VADSensitivity,
			MicrophoneIndex: cfg.Voice.MicrophoneIndex,
		})
	} else {
		logger.Warn("no audio backend built in, running silent; set DEV_MODE=true for console input")
		vc = voice.NewMock()
	}

	turns, err := turnlog.Open(cfg.TurnLogPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to open turn log: %w", err)
	}
	defer turns.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Producers.
	poller := control.NewFilePoller(cfg.Control.FilePath,
		time.Duration(cfg.Control.PollIntervalMs)*time.Millisecond, plane, logger)
	go poller.Run(ctx)

	// Dev mode hands stdin to the console voice; the keyboard listener only
	// attaches when stdin is free.
	if cfg.Control.Keyboard && !cfg.DevMode {
		restore, err := control.EnableRawMode(control.Stdin())
		if err != nil {
			logger.Warn("raw terminal mode unavailable", "error", err)
		} else {
			defer restore()
			kb := control.NewKeyboard(os.Stdin, plane, logger)
			go kb.Run(ctx)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("signal received, shutting down", "signal", sig.String())
			plane.Submit(control.CmdQuit)
		case <-ctx.Done():
		}
	}()

	eng := engine.New(engine.Deps{
		Config:    cfg,
		State:     st,
		Store:     store,
		Moods:     moods,
		Plane:     plane,
		Voice:     vc,
		Generator: gen,
		Persona:   pers,
		TurnLog:   turns,
		Logger:    logger,
		Out:       cmd.OutOrStdout(),
	})

	return eng.Run(ctx)
}

// buildGenerator selects the response provider. The live providers wrap the
// template generator so a provider outage degrades to canned responses.
func buildGenerator(cfg *config.Config, pers *persona.Persona, logger *slog.Logger) generate.Generator {
	tmpl := generate.NewTemplate(pers, nil)

	switch cfg.Generator.Provider {
	case "openai":
		return generate.NewOpenAI(generate.OpenAIOptions{
			Model:       cfg.Generator.Model,
			Temperature: cfg.Generator.Temperature,
			MaxTokens:   cfg.Generator.MaxTokens,
			APIKey:      os.Getenv("OPENAI_API_KEY"),
		}, tmpl, logger)
	case "anthropic":
		return generate.NewAnthropic(generate.AnthropicOptions{
			Temperature: cfg.Generator.Temperature,
			MaxTokens:   cfg.Generator.MaxTokens,
			APIKey:      os.Getenv("ANTHROPIC_API_KEY"),
		}, tmpl, logger)
	default:
		return tmpl
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadOrCreateConfig(configPath string, logger *slog.Logger) (*config.Config, string, error) {
	// If explicit path provided, use it
	if configPath != "" {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		return cfg, configPath, nil
	}

	// Search up directory tree for sparkd.json
	foundPath, err := findConfigInTree()
	if err != nil {
		return nil, "", err
	}

	if foundPath != "" {
		logger.Info("found existing config", "path", foundPath)
		cfg, err := config.LoadFromFile(foundPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, foundPath, nil
	}

	// No config found, create default in current directory
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get current directory: %w", err)
	}

	defaultPath := filepath.Join(cwd, "sparkd.json")
	logger.Info("no config found, creating default", "path", defaultPath)

	cfg := config.GenerateDefault()
	if err := cfg.SaveToFile(defaultPath); err != nil {
		return nil, "", fmt.Errorf("failed to save default config: %w", err)
	}

	logger.Info("created default config", "path", defaultPath)
	return cfg, defaultPath, nil
}

func findConfigInTree() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, "sparkd.json")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
