package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stitch/internal/classify"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <identifier>...",
		Short: "Classify secondary identifiers using the configured rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			rules := classify.Rules{
				Blacklist:          cfg.Classifier.Blacklist,
				MinTemporaryDigits: cfg.Classifier.MinTemporaryDigits,
				MaxTemporaryDigits: cfg.Classifier.MaxTemporaryDigits,
			}
			out := cmd.OutOrStdout()
			for _, id := range args {
				fmt.Fprintf(out, "%s\t%s\n", id, rules.Classify(id))
			}
			return nil
		},
	}
}
