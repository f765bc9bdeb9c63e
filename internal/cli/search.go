package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dan-solli/jarvis-core/pkg/model"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search items and memories by keyword",
		Long:  "Case-insensitive substring search over item titles and content and over active memory content.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			ctx := cmd.Context()

			s, err := opts.open(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			items, err := s.j.Items().Query(ctx, model.ItemQuery{UserID: &s.userID, Search: query, Limit: limit})
			if err != nil {
				return fmt.Errorf("search items: %w", err)
			}
			memories, err := s.j.Memories().Search(ctx, query, s.userID)
			if err != nil {
				return fmt.Errorf("search memories: %w", err)
			}
			if limit > 0 && len(memories) > limit {
				memories = memories[:limit]
			}
			if _, err := s.j.Activity().LogSearch(ctx, s.userID, query, len(items)+len(memories)); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.wantJSON() {
				return writeJSON(out, map[string]any{"items": items, "memories": memories})
			}

			fmt.Fprintf(out, "Items (%d)\n", len(items))
			for _, it := range items {
				fmt.Fprintf(out, "  %s\n", formatItem(it))
			}
			fmt.Fprintf(out, "Memories (%d)\n", len(memories))
			for _, m := range memories {
				fmt.Fprintf(out, "  [%s/%s] %s (updated %s)\n", m.Category, m.MemoryType, m.Content, humanize.Time(m.UpdatedAt))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Max results per kind")
	return cmd
}
