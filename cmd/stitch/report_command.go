package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stitch/internal/report"
	"stitch/internal/store"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var listRuns bool
	var limit int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show results of a past consolidation run",
		Long: `Report renders a stored run: summary, canonical records, identifier
mappings, the manual-review list, and verification outcomes when the run
included a registry check. Without --run the latest run is shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			st, err := store.Open(cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			out := cmd.OutOrStdout()

			if listRuns {
				runs, err := st.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				writeTable(out, report.RunList(runs))
				return nil
			}

			run, err := resolveRun(cmd, st, runID)
			if err != nil {
				return err
			}
			writeTable(out, report.RunSummary(*run))

			records, err := st.RecordsForRun(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			writeTable(out, report.CanonicalRecords(records))

			mappings, err := st.MappingsForRun(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			writeTable(out, report.Mappings(mappings))

			reviews, err := st.ReviewItemsForRun(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			writeTable(out, report.ReviewItems(reviews))

			if run.Verified {
				verifications, err := st.VerificationsForRun(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				writeTable(out, report.VerificationBreakdown(verifications))
				writeTable(out, report.VerificationFailures(verifications))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run id (defaults to the latest run)")
	cmd.Flags().BoolVar(&listRuns, "list", false, "List recent runs instead of rendering one")
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to list with --list")
	return cmd
}
