package chart

import "xsplot/pkg/nuclide"

// Figure is a plotly figure document.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one scatter line.
type Trace struct {
	Type string    `json:"type"`
	Mode string    `json:"mode"`
	Name string    `json:"name"`
	X    []float64 `json:"x"`
	Y    []float64 `json:"y"`
}

// Layout carries the figure-wide settings.
type Layout struct {
	ShowLegend bool `json:"showlegend"`
	XAxis      Axis `json:"xaxis"`
	YAxis      Axis `json:"yaxis"`
}

// Axis describes one axis.
type Axis struct {
	Title    AxisLabel `json:"title"`
	Type     string    `json:"type"`
	ZeroLine bool      `json:"zeroline"`
}

// AxisLabel is a plotly title object.
type AxisLabel struct {
	Text string `json:"text"`
}

// Build assembles the figure for entries under scale. Invisible entries get
// no trace at all.
func Build(entries []nuclide.Series, scale nuclide.AxisScale) Figure {
	fig := Figure{
		Data: make([]Trace, 0, len(entries)),
		Layout: Layout{
			ShowLegend: true,
			XAxis:      Axis{Title: AxisLabel{Text: XAxisTitle}, Type: AxisType(scale.XLog)},
			YAxis:      Axis{Title: AxisLabel{Text: YAxisTitle(entries)}, Type: AxisType(scale.YLog)},
		},
	}
	for _, e := range entries {
		if !e.Visible {
			continue
		}
		fig.Data = append(fig.Data, Trace{Type: "scatter", Mode: "lines", Name: e.Label, X: e.Energy, Y: e.CrossSection})
	}
	return fig
}

// Names returns the trace names in order.
func (f Figure) Names() []string {
	out := make([]string, len(f.Data))
	for i, t := range f.Data {
		out[i] = t.Name
	}
	return out
}
