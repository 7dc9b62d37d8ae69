// Package composite turns a background raster and two normalised ridge
// responses into a layered, render-ready composite.
//
// # Thresholds
//
// Each polarity resolves its threshold independently, first match wins:
//
//  1. a manual value in ThresholdSpec (SourceManual)
//  2. the polarity's entry in ThresholdSpec.Percentiles (SourcePercentile)
//  3. DefaultPercentile of the response (SourceDefault)
//
// Percentiles ignore NaN cells. A response with no valid cell resolves to
// +Inf, so its mask keeps nothing.
//
// # Masks
//
// A cell is kept where its normalised response is at or above the
// threshold. NaN cells are never kept. Overlay.Coverage reports the kept
// fraction.
//
// # Background Range
//
// The background is displayed between the 2nd and 98th percentiles of its
// valid cells. A background with no valid cell falls back to FallbackRange
// and sets Composite.RangeFallback.
//
// # Ownership
//
// Build keeps references to its input rasters; it does not copy or modify
// them.
package composite
