package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ikenthis/bmsagent/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an interactive console session",
	Long: `Reads one request per line and prints each result. Type help for the action
catalog, history for the actions run so far and exit to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")
		plain, _ := cmd.Flags().GetBool("plain")
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		rawContext, _ := cmd.Flags().GetString("context")

		stack, err := loadStack(cmd, true)
		if err != nil {
			return err
		}
		defer stack.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return cli.RunSession(ctx, stack, cli.RunOptions{
			JSON:      jsonMode,
			Plain:     plain,
			SessionID: sessionID,
			Fresh:     fresh,
			Context:   rawContext,
			In:        os.Stdin,
			Out:       os.Stdout,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().Bool("plain", false, "Plain text output without banner or markdown")
	runCmd.Flags().StringP("session", "s", "", "Session id to persist and resume")
	runCmd.Flags().Bool("fresh", false, "Discard any saved context for --session first")
	runCmd.Flags().String("context", "", "Initial execution context as a JSON object")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
