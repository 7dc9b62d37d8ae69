// Package render draws composites and response histograms.
//
// Composite produces an NRGBA image: a grey background stretched to the
// composite's display range, the bright overlay on a warm ramp (Reds) and
// the dark overlay on a cool ramp (Blues), both blended at a fixed opacity.
// Ramps are interpolated in CIE L*a*b* with go-colorful, overlays are blended
// with imaging.Overlay and upscaling uses bild's nearest-neighbour resampler.
//
// Histogram plots both response distributions with gonum/plot.
package render
