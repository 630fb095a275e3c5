package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/fsmgen/pkg/adapters/jsonl"
	"github.com/aretw0/fsmgen/pkg/fsm"
	"github.com/aretw0/fsmgen/pkg/solidity"
)

// filterOptions selects the rows a dataset keeps.
type filterOptions struct {
	field    string
	filter   fsm.Filter
	minWords int
	maxWords int
}

// keep reports whether a row passes the FSM cardinality filter and, when a
// word window is set, the length filter on its code.
func (o filterOptions) keep(row map[string]any) bool {
	reply, _ := row[o.field].(string)
	if !o.filter.Accept(reply) {
		return false
	}
	if o.maxWords > 0 {
		code, _ := row["code"].(string)
		return solidity.WordCountWithin(code, o.minWords, o.maxWords)
	}
	return true
}

func filterRows(w io.Writer, rows []map[string]any, opts filterOptions) (int, error) {
	enc := json.NewEncoder(w)
	kept := 0
	for _, row := range rows {
		if !opts.keep(row) {
			continue
		}
		if err := enc.Encode(row); err != nil {
			return kept, err
		}
		kept++
	}
	return kept, nil
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Keep dataset rows whose FSM is well formed and non-trivial",
	Long: `Reads a JSONL dataset and writes the rows whose FSM field parses, has more
than two states, at least one event, between one and nine functions and no
template placeholders left in it. Unknown fields are preserved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _ := cmd.Flags().GetString("in")
		out, _ := cmd.Flags().GetString("out")
		opts := filterOptions{filter: fsm.DefaultFilter()}
		opts.field, _ = cmd.Flags().GetString("field")
		opts.minWords, _ = cmd.Flags().GetInt("min-words")
		opts.maxWords, _ = cmd.Flags().GetInt("max-words")

		rows, err := jsonl.ReadFile[map[string]any](in)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if out != "" && out != "-" {
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}

		kept, err := filterRows(w, rows, opts)
		if err != nil {
			return err
		}
		logger.Info("dataset filtered", "in", in, "rows", len(rows), "kept", kept)
		if out != "" && out != "-" {
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d rows kept\n", kept, len(rows))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filterCmd)
	filterCmd.Flags().String("in", "", "Input JSONL dataset")
	filterCmd.Flags().String("out", "-", "Output JSONL file")
	filterCmd.Flags().String("field", "FSM", "Row field holding the FSM reply")
	filterCmd.Flags().Int("min-words", 0, "Code must have more words than this (needs --max-words)")
	filterCmd.Flags().Int("max-words", 0, "Code must have fewer words than this; 0 disables the length filter")
	_ = filterCmd.MarkFlagRequired("in")
}
