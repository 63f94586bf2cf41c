package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MidhulKiruthik/Nova-sub000/internal/seed"
	"github.com/MidhulKiruthik/Nova-sub000/pkg/logger"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cfg := seed.Config{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load synthetic partners into a running service",
		Long: `Generates partners with realistic metric spreads, posts them to
/partners/import in batches and checks the leaderboard that comes back.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := seed.Run(cmd.Context(), cfg, logger.Named("seed"))
			if err != nil {
				return err
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d partners in %d batches (%s)\n",
				stats.Imported, stats.Batches, stats.Duration)
			return err
		},
	}

	cmd.Flags().StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "base URL of the service")
	cmd.Flags().IntVar(&cfg.Count, "count", seed.DefaultCount, "number of partners to generate")
	cmd.Flags().IntVar(&cfg.BatchSize, "batch", seed.DefaultBatchSize, "partners per import request")
	cmd.Flags().IntVar(&cfg.TopN, "top", seed.DefaultTopN, "leaderboard entries to verify")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", seed.DefaultTimeout, "HTTP request timeout")
	cmd.Flags().StringVar(&cfg.OutputFile, "output", "", "write generated partners to this file")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", 0, "random seed (0 picks one)")
	return cmd
}
