package pipeline

import (
	"fmt"
	"image"
	"math"
	"time"

	"gonum.org/v1/plot"

	"github.com/ironsheep/ridgemap/internal/composite"
	"github.com/ironsheep/ridgemap/internal/config"
	"github.com/ironsheep/ridgemap/internal/lineament"
	"github.com/ironsheep/ridgemap/internal/raster"
	"github.com/ironsheep/ridgemap/internal/render"
	"github.com/ironsheep/ridgemap/internal/ridge"
)

// Result holds the outputs of one pipeline run.
type Result struct {
	Config    *config.PipelineConfig
	Method    ridge.Method
	Scales    ridge.ScaleRange
	Composite *composite.Composite
	Elapsed   time.Duration
}

// Derive builds the raster the detector runs on. Both bands are scaled by
// the configured gain and offset. When b is non-nil the result is the
// normalized difference (a - b) / (a + b), otherwise the scaled a. The
// result is standardized when the config asks for it. Nodata cells survive
// derivation as the sentinel or NaN.
func Derive(a, b *raster.Raster, cfg *config.PipelineConfig) (*raster.Raster, error) {
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("invalid band: %w", err)
	}
	gain, offset := cfg.GetGain(), cfg.GetOffset()

	out := raster.Scale(a, gain, offset, cfg.Nodata)
	if b != nil {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("invalid second band: %w", err)
		}
		nd, err := raster.NormalizedDifference(out, raster.Scale(b, gain, offset, cfg.Nodata), cfg.Nodata)
		if err != nil {
			return nil, fmt.Errorf("failed to compute normalized difference: %w", err)
		}
		out = nd
	}

	if cfg.GetStandardize() {
		std, err := raster.Standardize(out, cfg.Nodata)
		if err != nil {
			return nil, fmt.Errorf("failed to standardize: %w", err)
		}
		out = std
	}
	return out, nil
}

// Run detects bright and dark ridges in data and composites them over data
// itself. A nil cfg uses the defaults.
func Run(data *raster.Raster, cfg *config.PipelineConfig) (*Result, error) {
	if cfg == nil {
		cfg = config.EmptyPipelineConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	start := time.Now()

	method, scales := cfg.GetMethod(), cfg.GetScales()

	clean, err := ridge.Preprocess(data, cfg.Nodata, cfg.GetClipMax())
	if err != nil {
		return nil, fmt.Errorf("failed to preprocess: %w", err)
	}

	brightRaw, darkRaw, err := ridge.Detect(clean, scales, method, cfg.GetFilterParams())
	if err != nil {
		return nil, fmt.Errorf("failed to detect ridges: %w", err)
	}

	comp, err := composite.Build(
		raster.MaskValue(data, cfg.Nodata),
		ridge.Normalize(brightRaw),
		ridge.Normalize(darkRaw),
		cfg.ThresholdSpec(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build composite: %w", err)
	}

	res := &Result{
		Config:    cfg,
		Method:    method,
		Scales:    scales,
		Composite: comp,
		Elapsed:   time.Since(start),
	}
	Logf("ridge: %s %dx%d scales=%v bright>=%.4f (%s, %.2f%%) dark>=%.4f (%s, %.2f%%) in %v",
		method, data.Width, data.Height, []float64(scales),
		comp.Bright.Threshold, comp.Bright.Source, 100*comp.Bright.Coverage(),
		comp.Dark.Threshold, comp.Dark.Source, 100*comp.Dark.Coverage(),
		res.Elapsed.Round(time.Millisecond))
	if comp.RangeFallback {
		Logf("ridge: background has no valid cells, using display range %v", composite.FallbackRange)
	}
	return res, nil
}

// RunFile loads the band at path, and the band at secondPath when it is not
// empty, derives the detector input and runs the pipeline on it. A nil cache
// decodes from disk every time.
func RunFile(cache *raster.Cache, path, secondPath string, cfg *config.PipelineConfig) (*Result, error) {
	if cfg == nil {
		cfg = config.EmptyPipelineConfig()
	}
	load := raster.Load
	if cache != nil {
		load = cache.Load
	}

	a, err := load(path)
	if err != nil {
		return nil, err
	}
	var b *raster.Raster
	if secondPath != "" {
		if b, err = load(secondPath); err != nil {
			return nil, err
		}
	}

	data, err := Derive(a, b, cfg)
	if err != nil {
		return nil, err
	}
	return Run(data, cfg)
}

// Render draws the composite with the configured opacity, upscale and grid.
func (r *Result) Render() (*image.NRGBA, error) {
	return render.Composite(r.Composite, render.Options{
		Opacity:     r.Config.GetOpacity(),
		Scale:       r.Config.GetRenderScale(),
		GridSpacing: r.Config.GetGridSpacing(),
	})
}

// Histogram plots both response distributions with their thresholds.
func (r *Result) Histogram() (*plot.Plot, error) {
	return render.Histogram(r.Composite, render.HistogramOptions{
		Bins:  r.Config.GetHistogramBins(),
		Title: fmt.Sprintf("%s response (σ = %v)", r.Method, []float64(r.Scales)),
	})
}

// Overlay returns the masked response of one polarity.
func (r *Result) Overlay(p ridge.Polarity) *composite.Overlay {
	if p == ridge.Dark {
		return r.Composite.Dark
	}
	return r.Composite.Bright
}

// Lineaments extracts straight segments from one polarity's mask. A
// non-positive minLength uses the configured minimum.
func (r *Result) Lineaments(p ridge.Polarity, minLength int) (*lineament.Result, error) {
	if minLength <= 0 {
		minLength = r.Config.GetMinLineLength()
	}
	c := r.Composite
	res, err := lineament.Extract(r.Overlay(p).Mask, c.Width, c.Height, minLength)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s lineaments: %w", p, err)
	}
	return res, nil
}

// OverlaySummary describes one polarity of a run.
type OverlaySummary struct {
	// Threshold is nil when the response had no valid cell and nothing was
	// kept.
	Threshold  *float64         `json:"threshold"`
	Source     composite.Source `json:"source"`
	Percentile *float64         `json:"percentile,omitempty"`
	Coverage   float64          `json:"coverage"`
}

// Summary is the JSON-friendly description of a run.
type Summary struct {
	Width           int             `json:"width"`
	Height          int             `json:"height"`
	Method          ridge.Method    `json:"method"`
	Scales          []float64       `json:"scales"`
	Bright          OverlaySummary  `json:"bright"`
	Dark            OverlaySummary  `json:"dark"`
	BackgroundRange composite.Range `json:"background_range"`
	RangeFallback   bool            `json:"range_fallback,omitempty"`
	ElapsedMs       int64           `json:"elapsed_ms"`
}

// Summary returns the run's thresholds, coverage and display range.
func (r *Result) Summary() Summary {
	c := r.Composite
	return Summary{
		Width:           c.Width,
		Height:          c.Height,
		Method:          r.Method,
		Scales:          []float64(r.Scales),
		Bright:          summarize(c.Bright),
		Dark:            summarize(c.Dark),
		BackgroundRange: c.BackgroundRange,
		RangeFallback:   c.RangeFallback,
		ElapsedMs:       r.Elapsed.Milliseconds(),
	}
}

func summarize(o *composite.Overlay) OverlaySummary {
	s := OverlaySummary{Source: o.Source, Coverage: o.Coverage()}
	if !math.IsInf(o.Threshold, 0) && !math.IsNaN(o.Threshold) {
		t := o.Threshold
		s.Threshold = &t
	}
	if o.Source != composite.SourceManual {
		p := o.Percentile
		s.Percentile = &p
	}
	return s
}
