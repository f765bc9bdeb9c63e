package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dan-solli/jarvis-core/pkg/model"
)

func newItemsCmd(opts *rootOptions) *cobra.Command {
	var (
		status    string
		itemType  string
		tags      string
		dueWithin time.Duration
		limit     int
		offset    int
	)

	cmd := &cobra.Command{
		Use:   "items",
		Short: "List items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := model.ItemQuery{Limit: limit, Offset: offset}
			if status != "" {
				st := model.ItemStatus(status)
				if !st.Valid() {
					return fmt.Errorf("%w: unknown status %q", model.ErrInvalidData, status)
				}
				q.Status = &st
			}
			if itemType != "" {
				t := model.ItemType(itemType)
				if !t.Valid() {
					return fmt.Errorf("%w: unknown item type %q", model.ErrInvalidData, itemType)
				}
				q.ItemType = &t
			}
			for _, t := range strings.Split(tags, ",") {
				if t = strings.TrimSpace(t); t != "" {
					q.Tags = append(q.Tags, t)
				}
			}
			if dueWithin > 0 {
				q.DueBefore = model.Ptr(time.Now().Add(dueWithin))
			}

			ctx := cmd.Context()
			s, err := opts.open(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			q.UserID = &s.userID
			items, err := s.j.Items().Query(ctx, q)
			if err != nil {
				return fmt.Errorf("list items: %w", err)
			}

			out := cmd.OutOrStdout()
			if opts.wantJSON() {
				return writeJSON(out, items)
			}
			for _, it := range items {
				fmt.Fprintln(out, formatItem(it))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&itemType, "type", "", "Filter by item type")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "Filter by tags (comma-separated, any match)")
	cmd.Flags().DurationVar(&dueWithin, "due-within", 0, "Only items due within this duration from now")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Max results (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Results to skip")
	return cmd
}

// formatItem renders one item as a single line.
func formatItem(it model.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s (%s, %s)", it.Status, it.Title, it.ItemType, it.Priority)
	if it.DueDate != nil {
		fmt.Fprintf(&b, " due %s", humanize.Time(*it.DueDate))
	}
	if len(it.Tags) > 0 {
		fmt.Fprintf(&b, " #%s", strings.Join(it.Tags, " #"))
	}
	return b.String()
}
