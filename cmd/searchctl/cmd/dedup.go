package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/dedup"
)

func newDedupCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dedup",
		Short: "Report documents whose vocabulary repeats an earlier document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.checkFormat(); err != nil {
				return err
			}
			s, err := opts.open()
			if err != nil {
				return err
			}
			before := s.server.DocumentCount()
			removed := dedup.RemoveDuplicates(s.server, slog.Default().With("component", "searchctl"))
			if opts.format == "json" {
				return opts.writeJSON(cmd.OutOrStdout(), map[string]any{
					"removed":   removed,
					"documents": s.server.DocumentCount(),
				})
			}
			out := cmd.OutOrStdout()
			for _, id := range removed {
				fmt.Fprintf(out, "Found duplicate document id %d\n", id)
			}
			fmt.Fprintf(out, "%d of %d documents kept\n", s.server.DocumentCount(), before)
			return nil
		},
	}
}
