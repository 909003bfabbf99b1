package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/philipparndt/edgeframe/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "edgeframe %s (commit %s, built %s)\n",
			version.GetFullVersion(), version.GitCommit, version.BuildDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
