package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/opendroids/sparkd/internal/console"
	"github.com/opendroids/sparkd/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the persisted robot state without starting the loop",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg, _, err := loadOrCreateConfig(configPath, quiet)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return err
	}

	store := state.NewStore(cfg.StatePath(), cfg.Conversation.MaxHistory, quiet)
	st := store.Load()

	f := console.NewFormatter()
	fmt.Fprintln(cmd.OutOrStdout(), f.Status(st, "OFFLINE", st.Flags.Paused, st.Flags.Muted))
	if len(st.History) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), f.RecentTurns(st.RecentTurns(5)))
	}
	return nil
}
