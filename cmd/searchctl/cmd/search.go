package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/searcher/ranker"
)

func newSearchCmd(opts *globalOptions) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Print the top documents for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.checkFormat(); err != nil {
				return err
			}
			s, err := opts.open()
			if err != nil {
				return err
			}
			var pred ranker.Predicate
			if status != "" {
				st, err := index.ParseStatus(status)
				if err != nil {
					return err
				}
				pred = ranker.ByStatus(st)
			}
			query := strings.Join(args, " ")
			docs, err := s.server.FindTopDocuments(query, pred, s.mode)
			if err != nil {
				return err
			}
			if opts.format == "json" {
				return opts.writeJSON(cmd.OutOrStdout(), docs)
			}
			printDocuments(cmd, docs)
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "only documents with this status (default active)")
	return cmd
}

func printDocuments(cmd *cobra.Command, docs []ranker.Document) {
	out := cmd.OutOrStdout()
	if len(docs) == 0 {
		fmt.Fprintln(out, "no documents found")
		return
	}
	for _, d := range docs {
		fmt.Fprintf(out, "{ document_id = %d, relevance = %.6f, rating = %d }\n", d.ID, d.Relevance, d.Rating)
	}
}
