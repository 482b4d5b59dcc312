package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"xsplot/internal/catalog"
	"xsplot/pkg/nuclide"
)

func (c *cli) searchCmd() *cobra.Command {
	terms := map[nuclide.Field]*string{}
	var page int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Filter the catalog and print one page of matches",
		Long: `Filters the catalog the same way the interactive view does: per field an
exact (case-insensitive) match wins, otherwise matches by prefix.

Example:
  xsplot search --element Fe --reaction "(n,gamma)"
  xsplot search --nucleons 23 --page 1 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := loadCatalog(cmd.Context(), c.cfg.Catalog)
			if err != nil {
				return err
			}
			var state nuclide.SearchState
			for field, term := range terms {
				state = state.With(field, *term)
			}
			result := catalog.Paginate(cat.Search(state), c.cfg.PageSize, page)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			return printPage(cmd.OutOrStdout(), result)
		},
	}
	for _, field := range nuclide.Fields {
		terms[field] = cmd.Flags().String(string(field), "", "search term for "+string(field))
	}
	cmd.Flags().IntVarP(&page, "page", "p", 0, "zero-based page number (clamped)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the page as JSON")
	return cmd
}

func printPage(w io.Writer, page catalog.Page) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tELEMENT\tNUCLEONS\tREACTION\tMT\tLIBRARY\tTEMPERATURE")
	for _, r := range page.Items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%d\t%s\t%sK\n", r.ID, r.Element, r.Nucleons, r.Reaction, r.MT, r.Library, r.Temperature)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	pages := max(page.TotalPages, 1)
	_, err := fmt.Fprintf(w, "page %d of %d, %d matches\n", page.Number+1, pages, page.TotalItems)
	return err
}
