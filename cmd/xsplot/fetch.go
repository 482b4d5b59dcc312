package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"xsplot/internal/selection"
)

// parseIDs reads record ids as a selection: duplicates collapse and the
// result is in ascending order, as in the interactive view.
func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid record id %q", arg)
		}
		ids = append(ids, id)
	}
	return selection.New(ids...).IDs(), nil
}

func (c *cli) fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [id...]",
		Short: "Fetch the datasets for catalog ids and report what was found",
		Long: `Resolves each id to its dataset key, fetches the series and prints one line
per dataset. Ids whose dataset cannot be fetched are reported and skipped.
With fetch.persist_series enabled the documents are kept in the blob store.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), c.cfg, c.logger, false)
			if err != nil {
				return err
			}
			res, err := a.resolver.Resolve(cmd.Context(), ids)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range res.Entries {
				fmt.Fprintf(out, "ok    %-4d %s (%d points)\n", e.ID, e.Key, e.Len())
			}
			for _, f := range res.Failures {
				fmt.Fprintf(out, "fail  %-4d %s: %s\n", f.ID, f.Key, f.Kind)
			}
			c.logger.Debug("fetch finished", zap.Int("entries", len(res.Entries)), zap.Int("failures", len(res.Failures)))
			return nil
		},
	}
}
