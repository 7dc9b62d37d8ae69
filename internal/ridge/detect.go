package ridge

import (
	"fmt"

	"github.com/ironsheep/ridgemap/internal/raster"
)

// Polarity tags a response as bright-ridge or dark-ridge evidence.
type Polarity int

const (
	// Bright marks structures brighter than their surroundings.
	Bright Polarity = iota
	// Dark marks structures darker than their surroundings.
	Dark
)

func (p Polarity) String() string {
	if p == Dark {
		return "dark"
	}
	return "bright"
}

// blackRidges maps a polarity to the filter flag.
func (p Polarity) blackRidges() bool { return p == Dark }

// Detect runs the filter selected by method over clean at both polarities
// and returns the raw bright and dark responses. The scale range is checked
// before the filter is constructed or invoked.
func Detect(clean *raster.Raster, scales ScaleRange, method Method, params Params) (bright, dark *raster.Raster, err error) {
	if err := scales.Validate(); err != nil {
		return nil, nil, err
	}
	f, err := method.Filter(params)
	if err != nil {
		return nil, nil, err
	}
	return DetectWith(clean, scales, f)
}

// DetectWith is Detect for an already constructed filter.
func DetectWith(clean *raster.Raster, scales ScaleRange, f Filter) (bright, dark *raster.Raster, err error) {
	if err := scales.Validate(); err != nil {
		return nil, nil, err
	}
	if err := clean.Validate(); err != nil {
		return nil, nil, fmt.Errorf("detect: %w", err)
	}

	bright, err = respond(f, clean, scales, Bright)
	if err != nil {
		return nil, nil, err
	}
	dark, err = respond(f, clean, scales, Dark)
	if err != nil {
		return nil, nil, err
	}
	return bright, dark, nil
}

func respond(f Filter, clean *raster.Raster, scales ScaleRange, p Polarity) (*raster.Raster, error) {
	resp, err := f.Response(clean, []float64(scales), p.blackRidges())
	if err != nil {
		return nil, fmt.Errorf("failed to compute %s response: %w", p, err)
	}
	if !resp.SameShape(clean) {
		return nil, fmt.Errorf("%s response is %dx%d, want %dx%d",
			p, resp.Width, resp.Height, clean.Width, clean.Height)
	}
	return resp, nil
}
