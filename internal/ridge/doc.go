// Package ridge implements the structural detection core: preprocessing a
// band raster, running a multi-scale ridge filter at both polarities and
// normalising the responses.
//
// # Pipeline
//
// The stages are pure functions on in-memory rasters, called in sequence:
//
//  1. Preprocess: fill NaN and nodata cells with the median of the valid
//     cells, then clamp values above a ceiling
//  2. Detect: run the selected filter twice, once for bright ridges and once
//     for dark ridges, over the same scale range
//  3. Normalize: rescale each response to [0, 1]
//
// The composite package takes the two normalised responses from here.
//
// # Methods
//
// Two filters are available, selected by a closed enumeration:
//   - MethodFrangi: Frangi vesselness, responses in [0, 1]
//   - MethodMeijering: Meijering neuriteness, normalised per scale
//
// ParseMethod turns the configuration keys "frangi" and "meijering" into a
// Method. Any other key fails with an *UnsupportedMethodError; there is no
// silent fallback.
//
// # Errors
//
// The core returns three error types, each matching a sentinel through
// errors.Is:
//   - *DegenerateInputError (ErrDegenerateInput): no valid cell to fill from
//   - *InvalidScaleRangeError (ErrInvalidScaleRange): bad σ sequence
//   - *UnsupportedMethodError (ErrUnsupportedMethod): unknown filter key
//
// None of them is retried. Callers decide whether to abort a run or skip a
// band.
//
// # Ownership
//
// No function modifies its input raster. Each stage allocates and returns a
// new raster with the input's shape.
package ridge
