package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/fsmgen/internal/cli"
)

var cprCmd = &cobra.Command{
	Use:   "cpr",
	Short: "Compute the compilation pass rate of a dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		eval, records, stack, err := openEvaluator(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		res, err := eval.CPR(ctx, records)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd.OutOrStdout(), res)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Compiled: %d/%d\nCPR:      %.2f%%\n", res.Passed, res.Total, res.Rate)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cprCmd)
	addEvaluateFlags(cprCmd)
}
