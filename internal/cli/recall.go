package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newRecallCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recall [question]",
		Short: "Find memories related to a question",
		Long:  "Ranks active memories by embedding similarity to the question and prints those above the configured relevance floor.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			ctx := cmd.Context()

			s, err := opts.open(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			results, err := s.j.Recall(ctx, s.userID, question)
			if err != nil {
				return fmt.Errorf("recall: %w", err)
			}

			out := cmd.OutOrStdout()
			if opts.wantJSON() {
				return writeJSON(out, results)
			}
			if len(results) == 0 {
				fmt.Fprintln(out, "Nothing relevant remembered.")
				return nil
			}
			for _, r := range results {
				fmt.Fprintf(out, "%.2f  %s (confidence %s, accessed %s times, updated %s)\n",
					r.Score,
					r.Memory.Content,
					humanize.FtoaWithDigits(r.Memory.Confidence, 2),
					humanize.Comma(int64(r.Memory.AccessCount)),
					humanize.Time(r.Memory.UpdatedAt),
				)
			}
			return nil
		},
	}
}
