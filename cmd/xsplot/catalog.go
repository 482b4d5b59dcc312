package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"xsplot/internal/catalog"
)

func (c *cli) catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the catalog database",
	}
	var from string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Load catalog records into the configured sqlite or postgres database",
		Long: `Replaces the contents of the catalog table with records read from a JSON
file, or the catalog bundled with xsplot when --from is omitted.

Example:
  XSPLOT_CATALOG_SOURCE=sqlite XSPLOT_CATALOG_PATH=xsplot.db xsplot catalog import`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			records, err := catalog.FileSource{Path: from}.LoadRecords(ctx)
			if err != nil {
				return err
			}
			if _, err := catalog.New(records); err != nil {
				return err
			}
			store, err := openCatalogStore(ctx, c.cfg.Catalog)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			if err := store.ReplaceRecords(ctx, records); err != nil {
				return err
			}
			c.logger.Info("catalog imported", zap.String("source", c.cfg.Catalog.Source), zap.Int("records", len(records)))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records\n", len(records))
			return nil
		},
	}
	importCmd.Flags().StringVar(&from, "from", "", "JSON catalog file (default: bundled catalog)")
	cmd.AddCommand(importCmd)
	return cmd
}
