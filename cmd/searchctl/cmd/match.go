package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newMatchCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "match <id> <query>",
		Short: "Print the query words found in one document",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.checkFormat(); err != nil {
				return err
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("document id %q is not an integer", args[0])
			}
			s, err := opts.open()
			if err != nil {
				return err
			}
			words, status, err := s.server.MatchDocument(strings.Join(args[1:], " "), id, s.mode)
			if err != nil {
				return err
			}
			if opts.format == "json" {
				return opts.writeJSON(cmd.OutOrStdout(), map[string]any{
					"id":     id,
					"words":  words,
					"status": status,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "{ document_id = %d, status = %s, words = %s }\n",
				id, status, strings.Join(words, " "))
			return nil
		},
	}
}
