package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/fsmgen"
	"github.com/aretw0/fsmgen/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	Long: `Exposes FSM validation, Mermaid export and finding scoring as Model Context
Protocol tools, plus the FSM template as a resource. Logs go to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mcp.NewServer(strings.TrimSpace(fsmgen.Version), mcp.WithLogger(logger))
		return s.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
