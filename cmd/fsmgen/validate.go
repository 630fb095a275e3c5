package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/fsmgen/pkg/fsm"
)

var errInvalid = errors.New("validation failed")

var validateCmd = &cobra.Command{
	Use:   "validate <fsm.json>",
	Short: "Check an FSM for structural consistency",
	Long: `Checks, in order, that the initial state exists, that every transition
targets an existing state and that every trigger is a declared event.
Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(cmd, args[0])
		if err != nil {
			return err
		}
		ok, msg := fsm.Validate(doc)
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return errInvalid
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s ✅\n", msg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
