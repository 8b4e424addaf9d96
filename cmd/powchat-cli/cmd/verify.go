package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/nfrund/powchat/internal/pow"
	"github.com/spf13/cobra"
)

var errInvalidProof = errors.New("commitment does not verify")

var verifyCmd = &cobra.Command{
	Use:   "verify [commitment-json]",
	Short: "Verify a serialized commitment",
	Long: `Verify a serialized commitment given as an argument or on stdin.
Exits non-zero when the commitment is malformed or its proof does not hold.

Examples:
  powchat-cli verify '{"chat":{...},"hash":"...","nonce":6,"difficulty":1}'
  powchat-cli solve hi | powchat-cli verify`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		if len(args) == 1 {
			data = []byte(args[0])
		} else {
			var err error
			if data, err = io.ReadAll(cmd.InOrStdin()); err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
		}

		commitment, err := pow.ParseCommitment(data)
		if err != nil {
			return err
		}

		if !pow.Verify(commitment) {
			fmt.Fprintf(cmd.OutOrStdout(), "invalid: %s\n", commitment)
			return errInvalidProof
		}
		fmt.Fprintf(cmd.OutOrStdout(), "valid: %s\n", commitment)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
