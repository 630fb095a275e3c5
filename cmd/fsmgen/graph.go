package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/fsmgen/internal/presentation/graph"
	"github.com/aretw0/fsmgen/pkg/fsm"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <fsm.json>",
	Short: "Export the FSM as a Mermaid diagram",
	Long:  `Outputs a Mermaid flowchart (graph TD) of the state machine. Unreachable states are highlighted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(cmd, args[0])
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if ok, _ := fsm.Validate(doc); ok {
			overlay = &graph.GraphOverlay{Unreachable: fsm.Analyze(doc).Unreachable}
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(doc, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
