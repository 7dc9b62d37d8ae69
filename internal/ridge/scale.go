package ridge

import "math"

// ScaleRange is a strictly increasing sequence of positive Gaussian σ values.
type ScaleRange []float64

// DefaultScales returns σ = 2, 4, 6.
func DefaultScales() ScaleRange {
	return ScaleRange{2, 4, 6}
}

// Validate checks that the range is non-empty and holds finite, positive,
// strictly increasing values.
func (s ScaleRange) Validate() error {
	if len(s) == 0 {
		return &InvalidScaleRangeError{Scales: s, Reason: "at least one scale is required"}
	}
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &InvalidScaleRangeError{Scales: s, Reason: "scales must be finite"}
		}
		if v <= 0 {
			return &InvalidScaleRangeError{Scales: s, Reason: "scales must be positive"}
		}
		if i > 0 && v <= s[i-1] {
			return &InvalidScaleRangeError{Scales: s, Reason: "scales must be strictly increasing"}
		}
	}
	return nil
}
