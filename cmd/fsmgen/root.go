package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/fsmgen/internal/cli"
	"github.com/aretw0/fsmgen/internal/config"
	"github.com/aretw0/fsmgen/pkg/domain"
	"github.com/aretw0/fsmgen/pkg/fsm"
)

var (
	cfgPath string
	appCfg  config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fsmgen",
	Short: "FSM-guided smart contract generation",
	Long: `fsmgen turns natural-language requirements into Solidity contracts.
A finite state machine is generated and checked first, then the contract is
generated, compiled and scanned, feeding every problem back to the model.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
		}
		if cmd.Flags().Changed("log-format") {
			cfg.Log.Format, _ = cmd.Flags().GetString("log-format")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		appCfg = cfg
		logger = cli.NewLogger(cfg.Log)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to an fsmgen.yaml configuration file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
}

// readInput reads a file, or stdin when path is "-".
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// readDocument reads and decodes an FSM, printing every decode violation.
func readDocument(cmd *cobra.Command, path string) (*domain.Document, error) {
	raw, err := readInput(path)
	if err != nil {
		return nil, err
	}
	doc, err := fsm.Parse(raw)
	if err != nil {
		var derr *fsm.DecodeError
		if errors.As(err, &derr) {
			for _, v := range derr.Violations() {
				fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", v)
			}
		}
		return nil, err
	}
	return doc, nil
}
