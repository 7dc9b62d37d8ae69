package vesselness

import (
	"fmt"
	"math"

	"github.com/ironsheep/ridgemap/internal/raster"
)

// MeijeringOptions tunes the Meijering neuriteness filter.
type MeijeringOptions struct {
	// Alpha mixes each eigenvalue with the other one:
	// l1' = l1 + alpha*l2 and l2' = l2 + alpha*l1.
	Alpha float64

	// Backend performs the Gaussian derivative convolutions. Nil selects
	// DefaultConvolver().
	Backend Convolver
}

// DefaultMeijeringOptions returns alpha = 1/3, the optimal value for 2-D
// rasters.
func DefaultMeijeringOptions() MeijeringOptions {
	return MeijeringOptions{Alpha: 1.0 / 3.0}
}

// Meijering computes the multi-scale Meijering neuriteness of img. Each scale
// is normalised to a maximum of 1 before the pixel-wise maximum over scales
// is taken, so the response lies in [0, 1].
func Meijering(img *raster.Raster, scales []float64, blackRidges bool, opts MeijeringOptions) (*raster.Raster, error) {
	if img == nil {
		return nil, fmt.Errorf("meijering: nil raster")
	}
	if err := validateInput(img.Data, img.Width, img.Height, scales); err != nil {
		return nil, fmt.Errorf("meijering: %w", err)
	}
	if math.IsNaN(opts.Alpha) || math.IsInf(opts.Alpha, 0) {
		return nil, fmt.Errorf("meijering: alpha must be finite, got %v", opts.Alpha)
	}
	alpha := opts.Alpha
	conv := opts.Backend
	if conv == nil {
		conv = DefaultConvolver()
	}

	src := oriented(img.Data, blackRidges)
	out := img.Like()
	vals := make([]float64, len(src))

	for _, sigma := range scales {
		h, err := computeHessian(conv, src, img.Width, img.Height, sigma)
		if err != nil {
			return nil, fmt.Errorf("meijering: %w", err)
		}

		var maxVal float64
		for i := range h.rr {
			e1, e2 := eigenvalues(h.rr[i], h.rc[i], h.cc[i])
			m1 := e1 + alpha*e2
			m2 := e2 + alpha*e1
			v := m1
			if math.Abs(m2) > math.Abs(m1) {
				v = m2
			}
			if v < 0 {
				v = 0
			}
			vals[i] = v
			if v > maxVal {
				maxVal = v
			}
		}

		if maxVal == 0 {
			continue
		}
		for i, v := range vals {
			if v /= maxVal; v > out.Data[i] {
				out.Data[i] = v
			}
		}
	}
	return out, nil
}
