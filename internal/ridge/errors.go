package ridge

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerateInput matches *DegenerateInputError.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrInvalidScaleRange matches *InvalidScaleRangeError.
	ErrInvalidScaleRange = errors.New("invalid scale range")

	// ErrUnsupportedMethod matches *UnsupportedMethodError.
	ErrUnsupportedMethod = errors.New("unsupported method")
)

// DegenerateInputError reports a raster with no valid cell, so no fill value
// can be computed.
type DegenerateInputError struct {
	Width, Height int
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("degenerate input: %dx%d raster has no valid cells", e.Width, e.Height)
}

func (e *DegenerateInputError) Unwrap() error { return ErrDegenerateInput }

// InvalidScaleRangeError reports an unusable σ sequence.
type InvalidScaleRangeError struct {
	Scales []float64
	Reason string
}

func (e *InvalidScaleRangeError) Error() string {
	return fmt.Sprintf("invalid scale range %v: %s", e.Scales, e.Reason)
}

func (e *InvalidScaleRangeError) Unwrap() error { return ErrInvalidScaleRange }

// UnsupportedMethodError reports an unknown ridge filter key.
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported method %q (supported: frangi, meijering)", e.Method)
}

func (e *UnsupportedMethodError) Unwrap() error { return ErrUnsupportedMethod }
