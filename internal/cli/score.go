package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MidhulKiruthik/Nova-sub000/internal/config"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/scoring"
)

// ScoreResult is one scored partner in score output.
type ScoreResult struct {
	PartnerID string            `json:"partnerId"`
	Name      string            `json:"name"`
	Breakdown scoring.Breakdown `json:"breakdown"`
}

// NewScoreCommand creates the score command.
func NewScoreCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <file.json>",
		Short: "Score partners from a JSON file",
		Long: `Reads a partner object or an array of partners and prints each Nova Score
with its per-term breakdown. Weights come from the nova configuration.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			results, err := scoreFile(args[0], scoring.NewNovaScorer(scoring.WithWeights(cfg.ScoreWeights)))
			if err != nil {
				return err
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			return writeScoreTable(cmd.OutOrStdout(), results)
		},
	}
	return cmd
}

func scoreFile(path string, scorer *scoring.NovaScorer) ([]ScoreResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read partners: %w", err)
	}
	partners, err := decodePartners(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	out := make([]ScoreResult, len(partners))
	for i, p := range partners {
		p = model.Normalize(p)
		out[i] = ScoreResult{PartnerID: p.ID, Name: p.Name, Breakdown: scorer.Breakdown(p)}
	}
	return out, nil
}

// decodePartners accepts a single object or an array.
func decodePartners(data []byte) ([]model.Partner, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var p model.Partner
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return []model.Partner{p}, nil
	}
	var list []model.Partner
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func writeScoreTable(w io.Writer, results []ScoreResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSCORE\tSENTIMENT\tPUNCTUALITY\tRISK\tCANCELLATION\tRAW")
	for _, r := range results {
		b := r.Breakdown
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\n",
			r.PartnerID, r.Name, b.Score, b.Sentiment, b.Punctuality, b.RiskPenalty, b.CancellationPenalty, b.Raw)
	}
	return tw.Flush()
}
