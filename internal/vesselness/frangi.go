package vesselness

import (
	"fmt"
	"math"

	"github.com/ironsheep/ridgemap/internal/raster"
)

// FrangiOptions tunes the Frangi filter.
type FrangiOptions struct {
	// Alpha weights the plate-vs-line ratio. It only matters for volumetric
	// data; on 2-D rasters that ratio is unbounded and the term is 1.
	Alpha float64

	// Beta controls sensitivity to the blob-vs-line ratio |λ1|/|λ2|.
	Beta float64

	// Gamma controls sensitivity to the second-order structureness. NaN
	// selects half the maximum Hessian norm at the first scale; zero disables
	// the structureness term.
	Gamma float64

	// Backend performs the Gaussian derivative convolutions. Nil selects
	// DefaultConvolver().
	Backend Convolver
}

// DefaultFrangiOptions returns alpha = 0.5, beta = 0.5 and an automatic
// gamma.
func DefaultFrangiOptions() FrangiOptions {
	return FrangiOptions{Alpha: 0.5, Beta: 0.5, Gamma: math.NaN()}
}

// Frangi computes the multi-scale Frangi vesselness of img. The response is
// the pixel-wise maximum over scales and lies in [0, 1]. Pixels whose dominant
// curvature has the wrong sign for the requested polarity score 0.
func Frangi(img *raster.Raster, scales []float64, blackRidges bool, opts FrangiOptions) (*raster.Raster, error) {
	if img == nil {
		return nil, fmt.Errorf("frangi: nil raster")
	}
	if err := validateInput(img.Data, img.Width, img.Height, scales); err != nil {
		return nil, fmt.Errorf("frangi: %w", err)
	}
	if !(opts.Beta > 0) {
		return nil, fmt.Errorf("frangi: beta must be positive, got %v", opts.Beta)
	}
	if opts.Gamma < 0 || math.IsInf(opts.Gamma, 0) {
		return nil, fmt.Errorf("frangi: gamma must be finite and non-negative, got %v", opts.Gamma)
	}
	conv := opts.Backend
	if conv == nil {
		conv = DefaultConvolver()
	}

	src := oriented(img.Data, blackRidges)
	out := img.Like()
	gamma := opts.Gamma
	twoBeta2 := 2 * opts.Beta * opts.Beta

	for _, sigma := range scales {
		h, err := computeHessian(conv, src, img.Width, img.Height, sigma)
		if err != nil {
			return nil, fmt.Errorf("frangi: %w", err)
		}

		if math.IsNaN(gamma) {
			var maxNorm float64
			for i := range h.rr {
				l1, l2 := eigenvalues(h.rr[i], h.rc[i], h.cc[i])
				if n := math.Hypot(l1, l2); n > maxNorm {
					maxNorm = n
				}
			}
			gamma = maxNorm / 2
			if gamma == 0 {
				gamma = 1
			}
		}
		twoGamma2 := 2 * gamma * gamma

		for i := range h.rr {
			small, large := byMagnitude(eigenvalues(h.rr[i], h.rc[i], h.cc[i]))
			if large <= 0 {
				continue
			}
			rb := small / large
			s2 := small*small + large*large
			v := math.Exp(-rb * rb / twoBeta2)
			if twoGamma2 > 0 {
				v *= 1 - math.Exp(-s2/twoGamma2)
			}
			if v > out.Data[i] {
				out.Data[i] = v
			}
		}
	}
	return out, nil
}
