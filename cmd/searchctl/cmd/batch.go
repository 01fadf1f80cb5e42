package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/searcher/batch"
)

func newBatchCmd(opts *globalOptions) *cobra.Command {
	var joined bool

	cmd := &cobra.Command{
		Use:   "batch <query>...",
		Short: "Run several queries concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.checkFormat(); err != nil {
				return err
			}
			s, err := opts.open()
			if err != nil {
				return err
			}
			if joined {
				docs, err := batch.ProcessQueriesJoined(s.server, args, s.workers)
				if err != nil {
					return err
				}
				if opts.format == "json" {
					return opts.writeJSON(cmd.OutOrStdout(), docs)
				}
				printDocuments(cmd, docs)
				return nil
			}

			results, err := batch.ProcessQueries(s.server, args, s.workers)
			if err != nil {
				return err
			}
			if opts.format == "json" {
				return opts.writeJSON(cmd.OutOrStdout(), results)
			}
			for i, docs := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%q:\n", args[i])
				printDocuments(cmd, docs)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&joined, "joined", false, "print all results as one list in query order")
	return cmd
}
