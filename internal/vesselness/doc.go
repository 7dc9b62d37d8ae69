// Package vesselness implements multi-scale Hessian ridge filters for 2-D
// rasters.
//
// Two filters are provided:
//
//   - Frangi: the vesselness measure of Frangi et al. (1998), combining the
//     eigenvalue ratio (line vs blob) with the Hessian Frobenius norm
//     (structure vs background).
//   - Meijering: the neuriteness measure of Meijering et al. (2004), built
//     from a mixed eigenvalue and normalised to a maximum of 1 per scale.
//
// # Polarity
//
// Both filters detect dark ridges (valleys) when blackRidges is true. Bright
// ridges are detected by filtering the negated raster.
//
// # Hessian
//
// Second derivatives are computed by separable convolution with sampled
// Gaussian derivative kernels of radius ceil(4σ), using reflect borders
// (d c b a | a b c d | d c b a). Each element is multiplied by σ² so that
// responses at different scales are comparable.
//
// # Convolution Backends
//
// The pure Go backend is always available. Building with the opencv tag
// selects a gocv backend for the default convolver; it needs OpenCV 4
// installed on the build machine.
package vesselness
