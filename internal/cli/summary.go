package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive, got %d", days)
			}
			ctx := cmd.Context()

			s, err := opts.open(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			end := time.Now()
			start := end.AddDate(0, 0, -days)
			summary, err := s.j.Activity().GetActivitySummary(ctx, s.userID, start, end)
			if err != nil {
				return fmt.Errorf("summarize activity: %w", err)
			}

			out := cmd.OutOrStdout()
			if opts.wantJSON() {
				return writeJSON(out, summary)
			}

			fmt.Fprintf(out, "Activity since %s\n", humanize.Time(start))
			fmt.Fprintf(out, "  total:     %s\n", humanize.Comma(int64(summary.TotalActions)))
			fmt.Fprintf(out, "  creates:   %s\n", humanize.Comma(int64(summary.Creates)))
			fmt.Fprintf(out, "  updates:   %s\n", humanize.Comma(int64(summary.Updates)))
			fmt.Fprintf(out, "  completes: %s\n", humanize.Comma(int64(summary.Completes)))
			fmt.Fprintf(out, "  views:     %s\n", humanize.Comma(int64(summary.Views)))
			fmt.Fprintf(out, "  searches:  %s\n", humanize.Comma(int64(summary.Searches)))
			if summary.MostActiveHour != nil {
				fmt.Fprintf(out, "  busiest hour: %02d:00\n", *summary.MostActiveHour)
			} else {
				fmt.Fprintln(out, "  busiest hour: none")
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 7, "Number of days to summarize")
	return cmd
}
