package cmd

import (
	"os"

	"github.com/nfrund/powchat/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "powchat-cli",
	Short: "Proof-of-work chat relay tool",
	Long: `powchat-cli runs and talks to a proof-of-work chat relay.

Available commands:
  serve     Run the relay server
  solve     Solve a proof-of-work commitment for a message
  verify    Verify a serialized commitment
  send      Send a solved message to a relay and print the broadcast

Use "powchat-cli [command] --help" for more information about a specific command.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.New()
	},
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
