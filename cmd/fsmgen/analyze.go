package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/fsmgen/pkg/fsm"
)

type analyzeOutput struct {
	Valid       bool     `json:"valid"`
	Message     string   `json:"message"`
	Unreachable []string `json:"unreachable"`
	HasCycle    bool     `json:"has_cycle"`
	Accepted    bool     `json:"accepted"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <fsm.json>",
	Short: "Report unreachable states and cycles of an FSM",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		doc, err := readDocument(cmd, args[0])
		if err != nil {
			return err
		}

		out := analyzeOutput{Unreachable: []string{}}
		out.Valid, out.Message = fsm.Validate(doc)
		if out.Valid {
			a := fsm.Analyze(doc)
			out.Unreachable = append(out.Unreachable, a.Unreachable...)
			out.HasCycle = a.HasCycle
			out.Accepted = len(a.Unreachable) == 0 && a.HasCycle
		}

		w := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		fmt.Fprintf(w, "Structure:   %s\n", out.Message)
		if !out.Valid {
			return errInvalid
		}
		unreachable := "none"
		if len(out.Unreachable) > 0 {
			unreachable = strings.Join(out.Unreachable, ", ")
		}
		fmt.Fprintf(w, "Unreachable: %s\n", unreachable)
		fmt.Fprintf(w, "Cycle:       %t\n", out.HasCycle)
		if !out.Accepted {
			return errInvalid
		}
		fmt.Fprintln(w, "FSM accepted ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().Bool("json", false, "Print the analysis as JSON")
}
