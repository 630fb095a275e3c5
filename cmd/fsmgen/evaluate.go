package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/fsmgen/internal/cli"
	"github.com/aretw0/fsmgen/pkg/adapters/jsonl"
	"github.com/aretw0/fsmgen/pkg/domain"
	"github.com/aretw0/fsmgen/pkg/evaluate"
)

// openEvaluator loads the dataset named by --in and builds an evaluator over
// the configured toolchain. The caller closes the stack.
func openEvaluator(cmd *cobra.Command) (*evaluate.Evaluator, []domain.Record, *cli.Stack, error) {
	in, _ := cmd.Flags().GetString("in")
	records, err := jsonl.ReadFile[domain.Record](in)
	if err != nil {
		return nil, nil, nil, err
	}

	stack, err := cli.Build(appCfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	workers, _ := cmd.Flags().GetInt("workers")
	if workers <= 0 {
		workers = appCfg.Workers
	}
	opts := []evaluate.Option{evaluate.WithWorkers(workers), evaluate.WithLogger(logger)}
	if appCfg.Toolchain.RemoveImports {
		opts = append(opts, evaluate.WithoutImports())
	} else {
		opts = append(opts, evaluate.WithSubstitutions(appCfg.Toolchain.Substitutions))
	}
	return evaluate.New(stack.Compiler, stack.Scanner, opts...), records, stack, nil
}

func addEvaluateFlags(cmd *cobra.Command) {
	cmd.Flags().String("in", "", "JSONL dataset with a code field")
	cmd.Flags().Int("workers", 0, "Concurrent toolchain runs (overrides the config)")
	cmd.Flags().Bool("json", false, "Print the full result as JSON")
	_ = cmd.MarkFlagRequired("in")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
