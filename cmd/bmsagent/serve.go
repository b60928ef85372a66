package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ikenthis/bmsagent/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Exposes the agent as a JSON API with per-session conversation contexts, SSE result streams and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, err := loadStack(cmd, false)
		if err != nil {
			return err
		}
		defer stack.Close()

		addr := stack.Config.Server.Addr()
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			addr = fmt.Sprintf("%s:%d", stack.Config.Server.Host, port)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return cli.Serve(ctx, stack, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides server.port)")
}
