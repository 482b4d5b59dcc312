// Package export serialises resolved series for download and runs
// asynchronous export jobs that store rendered artifacts in the blob store.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"xsplot/pkg/nuclide"
)

// FileName is the download name of the JSON export.
const FileName = "cross_sections_from_xsplot.json"

// ContentType is the MIME type of the JSON export.
const ContentType = "application/json"

// Document is the exported JSON file. Arrays are aligned by selection index.
// Visibility is a display concern and is not exported.
type Document struct {
	EnergyValues       [][]float64 `json:"energy_values"`
	CrossSectionValues [][]float64 `json:"cross_section_values"`
	Labels             []string    `json:"labels"`
}

// Build collects every entry, visible or not, into a Document.
func Build(entries []nuclide.Series) Document {
	doc := Document{
		EnergyValues:       make([][]float64, 0, len(entries)),
		CrossSectionValues: make([][]float64, 0, len(entries)),
		Labels:             make([]string, 0, len(entries)),
	}
	for _, e := range entries {
		doc.EnergyValues = append(doc.EnergyValues, nonNil(e.Energy))
		doc.CrossSectionValues = append(doc.CrossSectionValues, nonNil(e.CrossSection))
		doc.Labels = append(doc.Labels, e.Label)
	}
	return doc
}

func nonNil(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}

// Marshal renders doc as indented JSON.
func Marshal(doc Document) ([]byte, error) {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return append(b, '\n'), nil
}

// WriteCSV writes entries in long form: one row per point.
func WriteCSV(w io.Writer, entries []nuclide.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"label", "energy_ev", "cross_section"}); err != nil {
		return err
	}
	for _, e := range entries {
		n := min(len(e.Energy), len(e.CrossSection))
		for i := 0; i < n; i++ {
			row := []string{
				e.Label,
				strconv.FormatFloat(e.Energy[i], 'g', -1, 64),
				strconv.FormatFloat(e.CrossSection[i], 'g', -1, 64),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
