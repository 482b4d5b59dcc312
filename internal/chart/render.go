package chart

import (
	"fmt"
	"io"
	"math"
	"strconv"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Default PNG dimensions.
const (
	DefaultWidth  = 1024
	DefaultHeight = 640
)

// maxDecadeTicks caps the number of labelled decades on a log axis.
const maxDecadeTicks = 12

// RenderOptions sizes the PNG.
type RenderOptions struct {
	Width  int
	Height int
}

// transparent is not the zero Color, so go-chart will not replace it with a
// default palette color.
var transparent = drawing.Color{R: 255, G: 255, B: 255, A: 0}

// RenderPNG draws fig as a PNG. Log axes are drawn on log10 values with
// labelled decades; points that are not positive on a log axis are dropped.
func RenderPNG(w io.Writer, fig Figure, opts RenderOptions) error {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	xLog := fig.Layout.XAxis.Type == AxisTypeLog
	yLog := fig.Layout.YAxis.Type == AxisTypeLog

	var series []gochart.Series
	xb, yb := newBounds(), newBounds()
	for i, tr := range fig.Data {
		xs, ys := project(tr.X, tr.Y, xLog, yLog)
		if len(xs) == 0 {
			continue
		}
		for j := range xs {
			xb.add(xs[j])
			yb.add(ys[j])
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    tr.Name,
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: gochart.GetDefaultColor(i),
				StrokeWidth: 1.5,
			},
		})
	}
	drawn := len(series) > 0
	if !drawn {
		// go-chart refuses to draw without a series; an invisible diagonal
		// keeps the axes and titles on screen.
		xb.add(0)
		xb.add(1)
		yb.add(0)
		yb.add(1)
		series = append(series, gochart.ContinuousSeries{
			XValues: []float64{0, 1},
			YValues: []float64{0, 1},
			Style:   gochart.Style{StrokeColor: transparent, StrokeWidth: 0},
		})
	}

	xr, xt := axisRange(xb, xLog)
	yr, yt := axisRange(yb, yLog)
	ch := gochart.Chart{
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      gochart.XAxis{Name: fig.Layout.XAxis.Title.Text, Range: xr, Ticks: xt},
		YAxis:      gochart.YAxis{Name: fig.Layout.YAxis.Title.Text, Range: yr, Ticks: yt},
		Series:     series,
	}
	if drawn {
		ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	}
	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	return nil
}

// project applies log10 to the axes that need it, dropping points that have
// no logarithm.
func project(x, y []float64, xLog, yLog bool) ([]float64, []float64) {
	n := min(len(x), len(y))
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		xv, yv := x[i], y[i]
		if xLog {
			if xv <= 0 {
				continue
			}
			xv = math.Log10(xv)
		}
		if yLog {
			if yv <= 0 {
				continue
			}
			yv = math.Log10(yv)
		}
		if math.IsNaN(xv) || math.IsInf(xv, 0) || math.IsNaN(yv) || math.IsInf(yv, 0) {
			continue
		}
		xs = append(xs, xv)
		ys = append(ys, yv)
	}
	return xs, ys
}

type bounds struct{ lo, hi float64 }

func newBounds() *bounds { return &bounds{lo: math.Inf(1), hi: math.Inf(-1)} }

func (b *bounds) add(v float64) {
	b.lo = math.Min(b.lo, v)
	b.hi = math.Max(b.hi, v)
}

// axisRange returns a non-degenerate range. Log axes snap to whole decades
// and get one tick per decade (thinned when the span is wide).
func axisRange(b *bounds, log bool) (*gochart.ContinuousRange, []gochart.Tick) {
	lo, hi := b.lo, b.hi
	if log {
		lo, hi = math.Floor(lo), math.Ceil(hi)
		if lo == hi {
			lo, hi = lo-1, hi+1
		}
		return &gochart.ContinuousRange{Min: lo, Max: hi}, decadeTicks(int(lo), int(hi))
	}
	if lo == hi {
		pad := math.Max(math.Abs(lo)*0.1, 1)
		lo, hi = lo-pad, hi+pad
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}, nil
}

func decadeTicks(lo, hi int) []gochart.Tick {
	step := 1
	for (hi-lo)/step > maxDecadeTicks {
		step++
	}
	ticks := make([]gochart.Tick, 0, (hi-lo)/step+1)
	for e := lo; e <= hi; e += step {
		ticks = append(ticks, gochart.Tick{Value: float64(e), Label: "1e" + strconv.Itoa(e)})
	}
	return ticks
}
