package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/fsmgen"
	"github.com/aretw0/fsmgen/internal/cli"
	"github.com/aretw0/fsmgen/internal/presentation/tui"
	"github.com/aretw0/fsmgen/pkg/adapters/jsonl"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate FSMs and contracts for a requirements dataset",
	Long: `Runs a refinement session for every requirement of a JSONL dataset and
appends one record per requirement to the output file. With a redis or memory
store configured, requirements that already have a record are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _ := cmd.Flags().GetString("in")
		out, _ := cmd.Flags().GetString("out")
		if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
			appCfg.Workers = workers
		}
		if cmd.Flags().Changed("randomize") {
			appCfg.LLM.Randomize, _ = cmd.Flags().GetBool("randomize")
		}

		reqs, err := jsonl.LoadRequirements(in)
		if err != nil {
			return err
		}

		stack, err := cli.Build(appCfg, logger)
		if err != nil {
			return err
		}
		defer stack.Close()

		dialogue, err := stack.Dialogue()
		if err != nil {
			return err
		}

		sink, err := jsonl.OpenSink(out)
		if err != nil {
			return err
		}
		defer sink.Close()

		opts := []fsmgen.Option{
			fsmgen.WithModel(dialogue.Model()),
			fsmgen.WithWorkers(appCfg.Workers),
			fsmgen.WithSessionObserver(stack.Metrics),
			fsmgen.WithLogger(logger),
		}
		if stack.Store != nil {
			opts = append(opts, fsmgen.WithResume(stack.Store))
		}
		pipeline := fsmgen.NewPipeline(stack.Loop(dialogue), sink, opts...)

		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			tui.PrintBanner(cmd.ErrOrStderr())
		}

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		if appCfg.MetricsAddr != "" {
			srv := &http.Server{Addr: appCfg.MetricsAddr, Handler: stack.Metrics.Handler(), ReadHeaderTimeout: 10 * time.Second}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Warn("metrics endpoint stopped", "error", err)
				}
			}()
			defer srv.Close()
		}

		sum, err := pipeline.Run(ctx, reqs)
		printSummary(cmd, sum)
		if err != nil {
			if errors.Is(err, context.Canceled) && ctx.Signal() != nil {
				logger.Warn("generation interrupted", "signal", ctx.Signal())
				return nil
			}
			return err
		}
		return nil
	},
}

func printSummary(cmd *cobra.Command, sum fsmgen.Summary) {
	fmt.Fprintf(cmd.OutOrStdout(),
		"requirements: %d  processed: %d  accepted: %d  skipped: %d  failed: %d\n",
		sum.Total, sum.Processed, sum.Accepted, sum.Skipped, sum.Failed)
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().String("in", "", "Input JSONL dataset with a user_requirement field")
	generateCmd.Flags().String("out", "", "Output JSONL file; records are appended")
	generateCmd.Flags().Int("workers", 0, "Concurrent sessions (overrides the config)")
	generateCmd.Flags().Bool("randomize", false, "Sample temperature and top_p per request")
	generateCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
	_ = generateCmd.MarkFlagRequired("in")
	_ = generateCmd.MarkFlagRequired("out")
}
