package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stitch/internal/engine"
	"stitch/internal/report"
	"stitch/internal/store"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var observationsPath string
	var registryPath string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the consolidation pipeline over an observation export",
		Long: `Run aggregates the observation export, consolidates identifiers that refer
to the same person, validates the resulting clusters, selects canonical
identifiers, optionally verifies the output against a registry extract, and
persists everything for reporting.

Examples:
  stitch run --observations payroll.csv
  stitch run --observations payroll.csv --registry extract.csv
  stitch run --observations payroll.csv --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(observationsPath) == "" {
				return fmt.Errorf("--observations is required")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger, err := ctx.logger()
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}

			var st *store.Store
			if !dryRun {
				st, err = store.Open(cfg)
				if err != nil {
					return fmt.Errorf("open store: %w", err)
				}
				defer st.Close()
			}

			summary, err := engine.New(cfg, st, logger).Run(cmd.Context(), engine.Options{
				ObservationsPath: observationsPath,
				RegistryPath:     registryPath,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			writeTable(out, report.RunSummary(summary.Run))
			if len(summary.Reviews) > 0 {
				writeTable(out, report.ReviewItems(summary.Reviews))
			}
			if summary.CapHit {
				fmt.Fprintf(out, "warning: grouping stopped at the pass cap (%d passes); results may be under-merged\n", summary.Passes)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&observationsPath, "observations", "", "CSV export of observation rows")
	cmd.Flags().StringVar(&registryPath, "registry", "", "Registry extract for verification (omit to skip)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run without persisting results")
	return cmd
}
