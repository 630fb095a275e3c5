package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/fsmgen"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of fsmgen",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "fsmgen version %s\n", strings.TrimSpace(fsmgen.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
