package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sparkd",
	Short: "Conversational robot daemon",
	Long: `sparkd drives the R2D3 robot persona through a continuous
listen -> process -> respond -> speak loop, controllable from the keyboard
and from a polled control file.

Running 'sparkd' without a subcommand is equivalent to 'sparkd run'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the 'run' command
		return runCmd.RunE(cmd, args)
	},
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(initCmd)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to sparkd.json config file (default: search up directory tree)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
