package main

import (
	"errors"
	"os"
	"strings"

	"github.com/ikenthis/bmsagent/internal/cli"
	"github.com/spf13/cobra"
)

var execCmd = &cobra.Command{
	Use:   "exec <request>...",
	Short: "Run a single request and print the result",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")
		sessionID, _ := cmd.Flags().GetString("session")
		rawContext, _ := cmd.Flags().GetString("context")

		stack, err := loadStack(cmd, true)
		if err != nil {
			return err
		}
		defer stack.Close()

		err = cli.Exec(cmd.Context(), stack, strings.Join(args, " "), cli.ExecOptions{
			SessionID: sessionID,
			Context:   rawContext,
			JSON:      jsonMode,
			Out:       os.Stdout,
		})
		if errors.Is(err, cli.ErrActionFailed) {
			// The result was already printed.
			os.Exit(2)
		}
		return err
	},
}

var interpretCmd = &cobra.Command{
	Use:   "interpret <request>...",
	Short: "Show which action a request maps to without running it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, err := loadStack(cmd, true)
		if err != nil {
			return err
		}
		defer stack.Close()
		return cli.Interpret(stack, strings.Join(args, " "), os.Stdout)
	},
}

var dispatchCmd = &cobra.Command{
	Use:   "dispatch <action>",
	Short: "Run one catalog action with explicit parameters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")
		sessionID, _ := cmd.Flags().GetString("session")
		rawContext, _ := cmd.Flags().GetString("context")
		params, _ := cmd.Flags().GetString("params")

		stack, err := loadStack(cmd, true)
		if err != nil {
			return err
		}
		defer stack.Close()

		err = cli.Dispatch(cmd.Context(), stack, args[0], params, cli.ExecOptions{
			SessionID: sessionID,
			Context:   rawContext,
			JSON:      jsonMode,
			Out:       os.Stdout,
		})
		if errors.Is(err, cli.ErrActionFailed) {
			os.Exit(2)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(interpretCmd)
	rootCmd.AddCommand(dispatchCmd)

	execCmd.Flags().Bool("json", false, "Print the result envelope as JSON")
	execCmd.Flags().StringP("session", "s", "", "Session id whose context the request joins")
	execCmd.Flags().String("context", "", "Execution context as a JSON object")

	dispatchCmd.Flags().String("params", "", "Action parameters as a JSON object")
	dispatchCmd.Flags().Bool("json", false, "Print the result envelope as JSON")
	dispatchCmd.Flags().StringP("session", "s", "", "Session id whose context the action joins")
	dispatchCmd.Flags().String("context", "", "Execution context as a JSON object")
}
