package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/aretw0/fsmgen/pkg/fsm"
)

var repairCmd = &cobra.Command{
	Use:   "repair <fsm.json>",
	Short: "Leniently decode an FSM and count its states, events and functions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(fsm.RepairAndExtract(fsm.ExtractPayload(raw)))
	},
}

func init() {
	rootCmd.AddCommand(repairCmd)
}
