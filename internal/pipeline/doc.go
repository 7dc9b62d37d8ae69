// Package pipeline runs a complete structural detection pass from a
// configuration value.
//
// # Stages
//
// Run takes a loaded band and applies, in order:
//
//  1. Derivation: linear gain/offset, optional normalized difference with a
//     second band, optional z-score standardization.
//  2. Preprocessing: nodata fill with the median and upper clipping.
//  3. Detection: the configured ridge filter in both polarities.
//  4. Normalization of each response to [0, 1].
//  5. Compositing over the derived band with nodata cells masked.
//
// The returned Result renders to an image, plots a histogram and extracts
// lineaments without re-running any stage.
//
// # Logging
//
// Progress is reported through Logf, which callers may redirect or mute
// with SetLogger.
package pipeline
