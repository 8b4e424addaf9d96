package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/coder/websocket"
	"github.com/nfrund/powchat/internal/pow"
	"github.com/spf13/cobra"
)

var (
	sendURL        string
	sendSender     string
	sendDifficulty uint8
	sendRaw        bool
)

var sendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Send a solved message to a relay and print the broadcast",
	Long: `Solve a commitment for the message, send it to the relay as a text frame
and print every frame the relay broadcasts until interrupted.

Examples:
  powchat-cli send "hello" --sender alice
  powchat-cli send "hello" --url ws://relay.example:3000/ws --difficulty 5
  powchat-cli send "plain text" --raw`,
	Args: cobra.ExactArgs(1),
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	frame := args[0]
	if !sendRaw {
		engine, err := pow.NewEngine(sendDifficulty)
		if err != nil {
			return err
		}
		pool := pow.NewSolverPool("cli", engine, runtime.NumCPU(), 1)
		defer pool.Shutdown()

		commitment, err := pool.Solve(ctx, pow.NewChatMessage(args[0], sendSender))
		if err != nil {
			return fmt.Errorf("solving: %w", err)
		}
		data, err := json.Marshal(commitment)
		if err != nil {
			return fmt.Errorf("encoding commitment: %w", err)
		}
		frame = string(data)
		fmt.Fprintf(cmd.ErrOrStderr(), "solved %s\n", commitment)
	}

	conn, _, err := websocket.Dial(ctx, sendURL, nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", sendURL, err)
	}
	defer conn.CloseNow()

	if err := conn.Write(ctx, websocket.MessageText, []byte(frame)); err != nil {
		return fmt.Errorf("sending: %w", err)
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				conn.Close(websocket.StatusNormalClosure, "")
				return nil
			}
			if status := websocket.CloseStatus(err); status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("reading: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	}
}

func init() {
	sendCmd.Flags().StringVarP(&sendURL, "url", "u", "ws://127.0.0.1:3000/ws", "Relay WebSocket URL")
	sendCmd.Flags().StringVarP(&sendSender, "sender", "s", "anonymous", "Sender name")
	sendCmd.Flags().Uint8VarP(&sendDifficulty, "difficulty", "d", 4, "Required leading zero hex digits")
	sendCmd.Flags().BoolVar(&sendRaw, "raw", false, "Send the message as-is without solving a commitment")
	rootCmd.AddCommand(sendCmd)
}
