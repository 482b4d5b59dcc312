package chart

import (
	"bytes"
	"encoding/json"
	"image/png"
	"testing"

	"github.com/google/go-cmp/cmp"

	"xsplot/pkg/nuclide"
)

func sampleEntries() []nuclide.Series {
	return []nuclide.Series{
		{ID: 1, Label: "U235 (n,gamma) ENDFB-8.0", Energy: []float64{1e-5, 1, 1e6}, CrossSection: []float64{1e3, 10, 1e-4}, Visible: true},
		{ID: 2, Label: "U235 heating ENDFB-8.0", Energy: []float64{1e-5, 1, 1e6}, CrossSection: []float64{0, 5, 2e7}, Visible: true},
		{ID: 3, Label: "Fe56 (n,elastic) FENDL-3.2c", Energy: []float64{1, 2}, CrossSection: []float64{3, 4}, Visible: false},
	}
}

func TestBuildOmitsHiddenTraces(t *testing.T) {
	fig := Build(sampleEntries(), nuclide.AxisScale{XLog: true, YLog: false})
	if diff := cmp.Diff([]string{"U235 (n,gamma) ENDFB-8.0", "U235 heating ENDFB-8.0"}, fig.Names()); diff != "" {
		t.Fatalf("trace names (-want +got):\n%s", diff)
	}
	if fig.Layout.XAxis.Type != "log" || fig.Layout.YAxis.Type != "linear" {
		t.Fatalf("unexpected axis types %+v", fig.Layout)
	}
	if fig.Layout.XAxis.Title.Text != "Energy [eV]" || fig.Layout.YAxis.Title.Text != CombinedTitle {
		t.Fatalf("unexpected titles %+v", fig.Layout)
	}
}

func TestFigureJSONShape(t *testing.T) {
	b, err := json.Marshal(Build(sampleEntries()[:1], nuclide.DefaultAxisScale()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	layout := doc["layout"].(map[string]any)
	yaxis := layout["yaxis"].(map[string]any)
	if yaxis["type"] != "log" || yaxis["zeroline"] != false || layout["showlegend"] != true {
		t.Fatalf("unexpected layout %v", layout)
	}
	if title := yaxis["title"].(map[string]any)["text"]; title != CrossSectionTitle {
		t.Fatalf("unexpected y title %v", title)
	}
	trace := doc["data"].([]any)[0].(map[string]any)
	if trace["name"] != "U235 (n,gamma) ENDFB-8.0" || len(trace["x"].([]any)) != 3 {
		t.Fatalf("unexpected trace %v", trace)
	}
}

func TestRenderPNG(t *testing.T) {
	cases := map[string]Figure{
		"log-log":      Build(sampleEntries(), nuclide.DefaultAxisScale()),
		"linear":       Build(sampleEntries(), nuclide.AxisScale{}),
		"empty":        Build(nil, nuclide.DefaultAxisScale()),
		"single point": Build([]nuclide.Series{{Label: "H1 (n,total) ENDFB-8.0", Energy: []float64{1}, CrossSection: []float64{20}, Visible: true}}, nuclide.DefaultAxisScale()),
	}
	for name, fig := range cases {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := RenderPNG(&buf, fig, RenderOptions{Width: 400, Height: 300}); err != nil {
				t.Fatalf("render: %v", err)
			}
			cfg, err := png.DecodeConfig(&buf)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if cfg.Width != 400 || cfg.Height != 300 {
				t.Fatalf("unexpected size %dx%d", cfg.Width, cfg.Height)
			}
		})
	}
}

func TestProjectDropsNonPositiveOnLogAxes(t *testing.T) {
	xs, ys := project([]float64{-1, 0, 10, 100}, []float64{1, 1, 0, 1000}, true, true)
	if diff := cmp.Diff([]float64{2}, xs); diff != "" {
		t.Fatalf("x (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{3}, ys); diff != "" {
		t.Fatalf("y (-want +got):\n%s", diff)
	}
	xs, _ = project([]float64{-1, 0}, []float64{1, 2}, false, false)
	if len(xs) != 2 {
		t.Fatalf("linear axes keep every point, got %v", xs)
	}
}

func TestDecadeTicksThinWideSpans(t *testing.T) {
	ticks := decadeTicks(-5, 7)
	if len(ticks) != 13 || ticks[0].Label != "1e-5" || ticks[12].Label != "1e7" {
		t.Fatalf("unexpected ticks %+v", ticks)
	}
	if wide := decadeTicks(-11, 20); len(wide) > maxDecadeTicks+1 {
		t.Fatalf("expected thinned ticks, got %d", len(wide))
	}
}
