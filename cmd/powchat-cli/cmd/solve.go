package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/nfrund/powchat/internal/pow"
	"github.com/spf13/cobra"
)

var (
	solveSender     string
	solveDifficulty uint8
	solveTimestamp  string
)

var solveCmd = &cobra.Command{
	Use:   "solve <message>",
	Short: "Solve a proof-of-work commitment for a message",
	Long: `Find the lowest nonce whose digest has the requested number of leading
zero hex digits and print the serialized commitment.

Examples:
  powchat-cli solve "hello" --sender alice --difficulty 4
  powchat-cli solve "hello" --sender alice --timestamp 1000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := pow.NewEngine(solveDifficulty)
		if err != nil {
			return err
		}

		msg := pow.NewChatMessage(args[0], solveSender)
		if solveTimestamp != "" {
			msg.Timestamp = solveTimestamp
		}

		commitment, err := engine.SolveContext(cmd.Context(), msg)
		if err != nil {
			return err
		}

		data, err := json.Marshal(commitment)
		if err != nil {
			return fmt.Errorf("encoding commitment: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	solveCmd.Flags().StringVarP(&solveSender, "sender", "s", "anonymous", "Sender name")
	solveCmd.Flags().Uint8VarP(&solveDifficulty, "difficulty", "d", 4, "Required leading zero hex digits")
	solveCmd.Flags().StringVar(&solveTimestamp, "timestamp", "", "Override the timestamp (decimal Unix seconds)")
	rootCmd.AddCommand(solveCmd)
}
