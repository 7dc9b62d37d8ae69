package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ironsheep/ridgemap/internal/composite"
	"github.com/ironsheep/ridgemap/internal/raster"
)

// DefaultBins is the histogram bin count used when HistogramOptions.Bins is
// zero.
const DefaultBins = 50

// HistogramOptions controls Histogram.
type HistogramOptions struct {
	Bins  int
	Title string
}

// Histogram plots the distributions of both normalised responses with a
// dashed marker at each resolved threshold.
func Histogram(c *composite.Composite, opts HistogramOptions) (*plot.Plot, error) {
	if c == nil || c.Bright == nil || c.Dark == nil {
		return nil, fmt.Errorf("incomplete composite")
	}
	bins := opts.Bins
	if bins == 0 {
		bins = DefaultBins
	}
	if bins < 1 {
		return nil, fmt.Errorf("bins must be positive, got %d", opts.Bins)
	}

	p := plot.New()
	p.Title.Text = opts.Title
	if p.Title.Text == "" {
		p.Title.Text = "Ridge response distribution"
	}
	p.X.Label.Text = "normalised response"
	p.Y.Label.Text = "cells"
	p.Legend.Top = true

	layers := []struct {
		name string
		o    *composite.Overlay
		ramp Ramp
	}{
		{"bright", c.Bright, Reds},
		{"dark", c.Dark, Blues},
	}

	drawn := 0
	for _, l := range layers {
		values := finite(l.o.Response)
		if len(values) == 0 {
			continue
		}
		h, err := plotter.NewHist(plotter.Values(values), bins)
		if err != nil {
			return nil, fmt.Errorf("failed to bin %s response: %w", l.name, err)
		}
		fill := l.ramp.NRGBA(0.6)
		fill.A = 140
		h.FillColor = fill
		h.LineStyle.Color = l.ramp.NRGBA(1)
		p.Add(h)
		p.Legend.Add(l.name, h)
		drawn++

		if math.IsInf(l.o.Threshold, 0) {
			continue
		}
		var top float64
		for _, b := range h.Bins {
			top = math.Max(top, b.Weight)
		}
		marker, err := plotter.NewLine(plotter.XYs{{X: l.o.Threshold, Y: 0}, {X: l.o.Threshold, Y: top}})
		if err != nil {
			return nil, fmt.Errorf("failed to draw %s threshold: %w", l.name, err)
		}
		marker.LineStyle.Color = l.ramp.NRGBA(1)
		marker.LineStyle.Width = vg.Points(1.5)
		marker.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(marker)
		p.Legend.Add(fmt.Sprintf("%s threshold %.3f", l.name, l.o.Threshold), marker)
	}
	if drawn == 0 {
		return nil, fmt.Errorf("no finite response values to plot: %w", raster.ErrNoValidSamples)
	}
	p.BackgroundColor = color.White
	return p, nil
}

// SaveHistogram writes p to path; the extension selects the format (png,
// svg, pdf, ...).
func SaveHistogram(p *plot.Plot, path string) error {
	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save histogram %s: %w", path, err)
	}
	return nil
}

// EncodeHistogramPNG renders p as a base64 PNG Result.
func EncodeHistogramPNG(p *plot.Plot) (*Result, error) {
	const width, height = 8 * vg.Inch, 5 * vg.Inch
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to render histogram: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode histogram: %w", err)
	}
	return &Result{
		Width:       int(width.Dots(vgDPI)),
		Height:      int(height.Dots(vgDPI)),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// vgDPI is the resolution gonum/plot uses for raster output.
const vgDPI = 96

func finite(r *raster.Raster) []float64 {
	out := make([]float64, 0, len(r.Data))
	for _, v := range r.Data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
