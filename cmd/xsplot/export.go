package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"xsplot/internal/chart"
	"xsplot/internal/export"
	"xsplot/pkg/nuclide"
)

func (c *cli) exportCmd() *cobra.Command {
	var (
		rawFormat string
		output    string
		linearX   bool
		linearY   bool
	)
	cmd := &cobra.Command{
		Use:   "export [id...]",
		Short: "Fetch datasets and write them as JSON, CSV or a PNG chart",
		Long: `Writes the series for the given catalog ids. The JSON document carries
energy_values, cross_section_values and labels aligned by selection order.

Example:
  xsplot export 12 40 -o cross_sections_from_xsplot.json
  xsplot export 12 --format png --linear-y -o plot.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(rawFormat)
			if err != nil {
				return err
			}
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
			for _, f := range res.Failures {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d (%s): %s\n", f.ID, f.Key, f.Kind)
			}
			scale := nuclide.AxisScale{XLog: !linearX, YLog: !linearY}
			var buf bytes.Buffer
			if err := writeExport(&buf, format, res.Entries, scale); err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d series)\n", output, len(res.Entries))
			return nil
		},
	}
	cmd.Flags().StringVarP(&rawFormat, "format", "f", string(export.FormatJSON), "json, csv or png")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	cmd.Flags().BoolVar(&linearX, "linear-x", false, "linear energy axis in png output")
	cmd.Flags().BoolVar(&linearY, "linear-y", false, "linear cross-section axis in png output")
	return cmd
}

func writeExport(w io.Writer, format export.Format, entries []nuclide.Series, scale nuclide.AxisScale) error {
	switch format {
	case export.FormatCSV:
		return export.WriteCSV(w, entries)
	case export.FormatPNG:
		return chart.RenderPNG(w, chart.Build(entries, scale), chart.RenderOptions{})
	default:
		data, err := export.Marshal(export.Build(entries))
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
}
