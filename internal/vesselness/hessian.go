package vesselness

import (
	"fmt"
	"math"
)

// hessian holds the three distinct elements of the per-pixel 2x2 Hessian,
// scale-normalised by sigma².
type hessian struct {
	rr, rc, cc []float64
}

func computeHessian(conv Convolver, img []float64, width, height int, sigma float64) (*hessian, error) {
	g0, g1, g2 := gaussianKernels(sigma)

	rr, err := conv.SepFilter(img, width, height, g0, g2)
	if err != nil {
		return nil, fmt.Errorf("failed to compute Hrr at sigma %v: %w", sigma, err)
	}
	rc, err := conv.SepFilter(img, width, height, g1, g1)
	if err != nil {
		return nil, fmt.Errorf("failed to compute Hrc at sigma %v: %w", sigma, err)
	}
	cc, err := conv.SepFilter(img, width, height, g2, g0)
	if err != nil {
		return nil, fmt.Errorf("failed to compute Hcc at sigma %v: %w", sigma, err)
	}

	s2 := sigma * sigma
	for i := range rr {
		rr[i] *= s2
		rc[i] *= s2
		cc[i] *= s2
	}
	return &hessian{rr: rr, rc: rc, cc: cc}, nil
}

// eigenvalues returns the eigenvalues of [[a, b], [b, c]] in descending
// order.
func eigenvalues(a, b, c float64) (float64, float64) {
	mean := (a + c) / 2
	d := math.Hypot((a-c)/2, b)
	return mean + d, mean - d
}

// byMagnitude orders two eigenvalues so that |small| <= |large|.
func byMagnitude(l1, l2 float64) (small, large float64) {
	if math.Abs(l1) > math.Abs(l2) {
		return l2, l1
	}
	return l1, l2
}

func validateInput(data []float64, width, height int, scales []float64) error {
	if width <= 0 || height <= 0 || len(data) != width*height {
		return fmt.Errorf("invalid raster: %dx%d with %d samples", width, height, len(data))
	}
	if len(scales) == 0 {
		return fmt.Errorf("at least one scale is required")
	}
	for _, s := range scales {
		if !(s > 0) || math.IsInf(s, 0) {
			return fmt.Errorf("scales must be positive and finite, got %v", s)
		}
	}
	return nil
}

// oriented returns img for dark-ridge detection and its negation for
// bright-ridge detection.
func oriented(img []float64, blackRidges bool) []float64 {
	if blackRidges {
		return img
	}
	neg := make([]float64, len(img))
	for i, v := range img {
		neg[i] = -v
	}
	return neg
}
