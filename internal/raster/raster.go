package raster

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidShape is returned when raster dimensions are non-positive or do
// not match the length of the supplied sample slice.
var ErrInvalidShape = errors.New("invalid raster shape")

// Raster is a row-major grid of float64 samples.
type Raster struct {
	// Width is the number of columns.
	Width int

	// Height is the number of rows.
	Height int

	// Data holds Width*Height samples; Data[y*Width+x] is the sample at (x, y).
	Data []float64
}

// New allocates a zero-filled raster.
func New(width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidShape, width, height)
	}
	return &Raster{
		Width:  width,
		Height: height,
		Data:   make([]float64, width*height),
	}, nil
}

// FromData wraps an existing sample slice. The slice is not copied; the
// caller hands over ownership.
func FromData(width, height int, data []float64) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidShape, width, height)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("%w: %dx%d needs %d samples, got %d",
			ErrInvalidShape, width, height, width*height, len(data))
	}
	return &Raster{Width: width, Height: height, Data: data}, nil
}

// Filled allocates a raster with every sample set to v.
func Filled(width, height int, v float64) (*Raster, error) {
	r, err := New(width, height)
	if err != nil {
		return nil, err
	}
	for i := range r.Data {
		r.Data[i] = v
	}
	return r, nil
}

// Len returns the number of samples.
func (r *Raster) Len() int { return len(r.Data) }

// At returns the sample at (x, y).
func (r *Raster) At(x, y int) float64 { return r.Data[y*r.Width+x] }

// Set stores v at (x, y).
func (r *Raster) Set(x, y int, v float64) { r.Data[y*r.Width+x] = v }

// Clone returns a deep copy.
func (r *Raster) Clone() *Raster {
	data := make([]float64, len(r.Data))
	copy(data, r.Data)
	return &Raster{Width: r.Width, Height: r.Height, Data: data}
}

// SameShape reports whether o has the same dimensions as r.
func (r *Raster) SameShape(o *Raster) bool {
	return o != nil && r.Width == o.Width && r.Height == o.Height
}

// Like allocates a zero-filled raster with the same shape as r.
func (r *Raster) Like() *Raster {
	return &Raster{Width: r.Width, Height: r.Height, Data: make([]float64, len(r.Data))}
}

// Validate checks that the raster's dimensions agree with its sample slice.
func (r *Raster) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil raster", ErrInvalidShape)
	}
	if r.Width <= 0 || r.Height <= 0 || len(r.Data) != r.Width*r.Height {
		return fmt.Errorf("%w: %dx%d with %d samples", ErrInvalidShape, r.Width, r.Height, len(r.Data))
	}
	return nil
}

// IsMissing reports whether v is NaN or equal to the nodata sentinel.
// A nil sentinel only treats NaN as missing.
func IsMissing(v float64, nodata *float64) bool {
	if math.IsNaN(v) {
		return true
	}
	return nodata != nil && v == *nodata
}
