package cmd

import (
	"github.com/nfrund/powchat/internal/config"
	"github.com/nfrund/powchat/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the relay server",
	Long: `Run the relay server configured from the environment and an optional .env file.

Environment:
  POWCHAT_ADDR            listen address (default 127.0.0.1:3000)
  POWCHAT_DIFFICULTY      required leading zero hex digits (default 0)
  POWCHAT_GATE            off or verify (default off)
  POWCHAT_BACKLOG         per-peer payload backlog (default 100)
  POWCHAT_SOLVER_WORKERS  solver pool size (default number of CPUs)
  POWCHAT_SOLVER_QUEUE    solver pool queue length (default 64)
  POWCHAT_WRITE_TIMEOUT   per-frame write timeout (default 10s)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}
		s, err := server.New(cfg)
		if err != nil {
			return err
		}
		s.RegisterRoutes()
		return s.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
