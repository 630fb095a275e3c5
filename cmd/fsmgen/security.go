package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/fsmgen/internal/cli"
	"github.com/aretw0/fsmgen/internal/presentation/tui"
	"github.com/aretw0/fsmgen/pkg/evaluate"
	"github.com/aretw0/fsmgen/pkg/security"
)

var securityCmd = &cobra.Command{
	Use:   "security",
	Short: "Scan every contract of a dataset and report VRS, ZRCP and HRCP",
	RunE: func(cmd *cobra.Command, args []string) error {
		eval, records, stack, err := openEvaluator(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		res, err := eval.Security(ctx, records)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd.OutOrStdout(), res)
		}
		if details, _ := cmd.Flags().GetBool("details"); details {
			render := tui.NewRenderer(os.Stdout)
			for _, c := range res.Contracts {
				if c.Report == nil {
					continue
				}
				out, err := render(tui.RiskMarkdown(c.ID, *c.Report, c.Findings))
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
			}
		}
		if dir, _ := cmd.Flags().GetString("sarif-dir"); dir != "" {
			if err := writeSARIFs(dir, res.Contracts); err != nil {
				return err
			}
		}
		printSecurity(cmd, res)
		return nil
	},
}

func printSecurity(cmd *cobra.Command, res evaluate.SecurityResult) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Contracts:       %d (%d not analyzable)\n", res.Total, res.CompileFailed)
	fmt.Fprintf(w, "VRS:             %.2f\n", res.VRS)
	fmt.Fprintf(w, "ZRCP:            %.2f%%\n", res.ZRCP)
	fmt.Fprintf(w, "HRCP:            %.2f%%\n", res.HRCP)
	fmt.Fprintf(w, "High/Medium/Low: %d/%d/%d\n", res.TotalHighRisk, res.TotalMediumRisk, res.TotalLowRisk)
}

// writeSARIFs writes one SARIF log per analyzed contract, named after its id.
func writeSARIFs(dir string, contracts []evaluate.ContractRisk) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for i, c := range contracts {
		if c.Report == nil {
			continue
		}
		name := c.ID
		if name == "" {
			name = fmt.Sprintf("row-%d", i+1)
		}
		f, err := os.Create(fmt.Sprintf("%s/%s.sarif", dir, name))
		if err != nil {
			return err
		}
		err = security.WriteSARIF(f, name+".sol", c.Findings)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("sarif %s: %w", name, err)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(securityCmd)
	addEvaluateFlags(securityCmd)
	securityCmd.Flags().Bool("details", false, "Render the merged findings of every contract")
	securityCmd.Flags().String("sarif-dir", "", "Write a SARIF log per contract into this directory")
}
