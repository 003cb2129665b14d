package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stitch/internal/canonical"
	"stitch/internal/classify"
	"stitch/internal/nameutil"
	"stitch/internal/registry"
	"stitch/internal/report"
	"stitch/internal/store"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var registryPath string
	var runID string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Re-verify a stored run against a registry extract",
		Long: `Verify checks a past run's canonical records against a registry extract
without re-running consolidation. Useful when a fresh extract arrives after
a run completed. Results are printed, not persisted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(registryPath) == "" {
				return fmt.Errorf("--registry is required")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger, err := ctx.logger()
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}

			st, err := store.Open(cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			run, err := resolveRun(cmd, st, runID)
			if err != nil {
				return err
			}
			stored, err := st.RecordsForRun(cmd.Context(), run.ID)
			if err != nil {
				return fmt.Errorf("load records: %w", err)
			}
			records := make([]canonical.Record, 0, len(stored))
			for _, record := range stored {
				records = append(records, canonical.Record{
					PrimaryID:   record.PrimaryID,
					SecondaryID: record.SecondaryID,
					NameKeys:    record.NameKeys,
				})
			}

			rules := classify.Rules{
				Blacklist:          cfg.Classifier.Blacklist,
				MinTemporaryDigits: cfg.Classifier.MinTemporaryDigits,
				MaxTemporaryDigits: cfg.Classifier.MaxTemporaryDigits,
			}
			entries, err := registry.LoadCSV(registryPath)
			if err != nil {
				return err
			}
			matcher := nameutil.Matcher{
				Threshold:        cfg.Matching.VerifyThreshold,
				SharedTokenFloor: cfg.Matching.SharedTokenFloor,
			}
			verifier := registry.NewVerifier(registry.NewIndex(entries, rules), matcher, cfg.Engine.VerifyConcurrency, logger)
			outcomes, err := verifier.Verify(cmd.Context(), records)
			if err != nil {
				return err
			}

			results := make([]store.VerificationResult, 0, len(outcomes))
			for _, outcome := range outcomes {
				results = append(results, store.VerificationResult{
					PrimaryID:      outcome.PrimaryID,
					SecondaryID:    outcome.SecondaryID,
					Status:         string(outcome.Status),
					Reference:      outcome.Reference,
					RegisteredName: outcome.RegisteredName,
					Score:          outcome.Score,
				})
			}
			out := cmd.OutOrStdout()
			writeTable(out, report.VerificationBreakdown(results))
			writeTable(out, report.VerificationFailures(results))
			return nil
		},
	}

	cmd.Flags().StringVar(&registryPath, "registry", "", "Registry extract to verify against")
	cmd.Flags().StringVar(&runID, "run", "", "Run id (defaults to the latest run)")
	return cmd
}

func resolveRun(cmd *cobra.Command, st *store.Store, runID string) (*store.Run, error) {
	if id := strings.TrimSpace(runID); id != "" {
		return st.GetRun(cmd.Context(), id)
	}
	return st.LatestRun(cmd.Context())
}
