package composite

import (
	"errors"
	"fmt"
	"math"

	"github.com/ironsheep/ridgemap/internal/raster"
)

// DefaultPercentile is applied to a polarity with neither a manual threshold
// nor a percentile.
const DefaultPercentile = 95.0

// FallbackRange is the background display range used when the background
// has no valid cell.
var FallbackRange = Range{Low: -2, High: 4}

// ErrShapeMismatch is returned when the three input rasters differ in shape.
var ErrShapeMismatch = errors.New("composite inputs differ in shape")

// PercentilePair holds one percentile (0-100) per polarity.
type PercentilePair struct {
	Bright float64 `json:"bright"`
	Dark   float64 `json:"dark"`
}

// ThresholdSpec selects how each polarity's threshold is resolved. A manual
// value wins; otherwise the polarity's entry in Percentiles is used;
// otherwise DefaultPercentile.
type ThresholdSpec struct {
	Bright      *float64        `json:"bright,omitempty"`
	Dark        *float64        `json:"dark,omitempty"`
	Percentiles *PercentilePair `json:"percentiles,omitempty"`
}

// Source records where a threshold came from.
type Source string

const (
	// SourceManual is a threshold given directly by the caller.
	SourceManual Source = "manual"

	// SourcePercentile is a caller-chosen percentile of the response.
	SourcePercentile Source = "percentile"

	// SourceDefault is DefaultPercentile, used when the caller gave neither.
	SourceDefault Source = "default"
)

// Range is a closed display interval.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Overlay is one polarity's masked response.
type Overlay struct {
	// Response is the normalised response; read it only where Mask is true.
	Response *raster.Raster

	// Mask is true where Response is at or above Threshold.
	Mask []bool

	Threshold  float64
	Source     Source
	Percentile float64 // meaningful unless Source is SourceManual
}

// Coverage returns the fraction of cells kept by the mask.
func (o *Overlay) Coverage() float64 {
	if len(o.Mask) == 0 {
		return 0
	}
	kept := 0
	for _, m := range o.Mask {
		if m {
			kept++
		}
	}
	return float64(kept) / float64(len(o.Mask))
}

// Composite is the render-ready result of Build.
type Composite struct {
	Width, Height int

	Background      *raster.Raster
	BackgroundRange Range

	// RangeFallback reports that BackgroundRange is FallbackRange because
	// the background had no valid cell.
	RangeFallback bool

	Bright *Overlay
	Dark   *Overlay
}

// Build masks the two normalised responses at their resolved thresholds and
// derives the background display range from the 2nd and 98th percentiles of
// the valid background cells.
func Build(background, brightNorm, darkNorm *raster.Raster, spec ThresholdSpec) (*Composite, error) {
	inputs := []struct {
		name string
		r    *raster.Raster
	}{{"background", background}, {"bright", brightNorm}, {"dark", darkNorm}}
	for _, in := range inputs {
		if err := in.r.Validate(); err != nil {
			return nil, fmt.Errorf("invalid %s raster: %w", in.name, err)
		}
	}
	if !background.SameShape(brightNorm) || !background.SameShape(darkNorm) {
		return nil, fmt.Errorf("%w: background %dx%d, bright %dx%d, dark %dx%d", ErrShapeMismatch,
			background.Width, background.Height,
			brightNorm.Width, brightNorm.Height,
			darkNorm.Width, darkNorm.Height)
	}

	brightT, darkT, err := ResolveThresholds(brightNorm, darkNorm, spec)
	if err != nil {
		return nil, err
	}

	c := &Composite{
		Width:      background.Width,
		Height:     background.Height,
		Background: background,
		Bright:     mask(brightNorm, brightT),
		Dark:       mask(darkNorm, darkT),
	}

	c.BackgroundRange, err = DisplayRange(background)
	if errors.Is(err, raster.ErrNoValidSamples) {
		c.BackgroundRange = FallbackRange
		c.RangeFallback = true
	} else if err != nil {
		return nil, err
	}
	return c, nil
}

// Resolved is a threshold with its provenance.
type Resolved struct {
	Value      float64
	Source     Source
	Percentile float64
}

// ResolveThresholds resolves both polarities' thresholds from spec.
func ResolveThresholds(brightNorm, darkNorm *raster.Raster, spec ThresholdSpec) (bright, dark Resolved, err error) {
	brightP, darkP := DefaultPercentile, DefaultPercentile
	src := SourceDefault
	if spec.Percentiles != nil {
		brightP, darkP = spec.Percentiles.Bright, spec.Percentiles.Dark
		src = SourcePercentile
	}

	bright, err = resolve(brightNorm, spec.Bright, brightP, src)
	if err != nil {
		return Resolved{}, Resolved{}, fmt.Errorf("failed to resolve bright threshold: %w", err)
	}
	dark, err = resolve(darkNorm, spec.Dark, darkP, src)
	if err != nil {
		return Resolved{}, Resolved{}, fmt.Errorf("failed to resolve dark threshold: %w", err)
	}
	return bright, dark, nil
}

func resolve(resp *raster.Raster, manual *float64, p float64, src Source) (Resolved, error) {
	if manual != nil {
		if math.IsNaN(*manual) {
			return Resolved{}, fmt.Errorf("manual threshold must not be NaN")
		}
		return Resolved{Value: *manual, Source: SourceManual}, nil
	}
	v, err := raster.Percentile(resp.Data, p)
	if errors.Is(err, raster.ErrNoValidSamples) {
		// An all-NaN response keeps nothing whatever the cutoff.
		return Resolved{Value: math.Inf(1), Source: src, Percentile: p}, nil
	}
	if err != nil {
		return Resolved{}, err
	}
	return Resolved{Value: v, Source: src, Percentile: p}, nil
}

func mask(resp *raster.Raster, t Resolved) *Overlay {
	m := make([]bool, len(resp.Data))
	for i, v := range resp.Data {
		// NaN compares false and stays masked.
		m[i] = v >= t.Value
	}
	return &Overlay{
		Response:   resp,
		Mask:       m,
		Threshold:  t.Value,
		Source:     t.Source,
		Percentile: t.Percentile,
	}
}

// DisplayRange returns the 2nd and 98th percentiles of the non-NaN cells of
// r. It returns raster.ErrNoValidSamples when there is none.
func DisplayRange(r *raster.Raster) (Range, error) {
	ps, err := raster.Percentiles(r.Data, 2, 98)
	if err != nil {
		return Range{}, err
	}
	return Range{Low: ps[0], High: ps[1]}, nil
}
