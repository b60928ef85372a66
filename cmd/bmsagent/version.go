package main

import (
	"fmt"
	"strings"

	"github.com/ikenthis/bmsagent"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of bmsagent",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "bmsagent version %s\n", strings.TrimSpace(bmsagent.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
