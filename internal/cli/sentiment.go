package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/sentiment"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/types"
)

// NewSentimentCommand creates the sentiment command.
func NewSentimentCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sentiment <text>...",
		Short:         "Score free text on the 0 to 5 sentiment scale",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				return errors.New("text is empty")
			}
			score := sentiment.Default().Analyze(text)
			res := types.SentimentResult{Score: score, Category: sentiment.Categorize(score)}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%.2f %s\n", res.Score, res.Category)
			return err
		},
	}
	return cmd
}
