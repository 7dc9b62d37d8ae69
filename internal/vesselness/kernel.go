package vesselness

import "math"

// gaussianKernels returns sampled Gaussian kernels for derivative orders 0, 1
// and 2 at the given sigma. All three share the radius ceil(4σ) and are
// indexed from -radius to +radius. The order-0 kernel sums to 1, the order-1
// and order-2 kernels sum to 0.
func gaussianKernels(sigma float64) (g0, g1, g2 []float64) {
	radius := int(math.Ceil(4 * sigma))
	if radius < 1 {
		radius = 1
	}
	size := 2*radius + 1
	g0 = make([]float64, size)
	g1 = make([]float64, size)
	g2 = make([]float64, size)

	s2 := sigma * sigma
	var sum float64
	for i := 0; i < size; i++ {
		x := float64(i - radius)
		g0[i] = math.Exp(-x * x / (2 * s2))
		sum += g0[i]
	}
	for i := range g0 {
		g0[i] /= sum
	}

	var sum2 float64
	for i := 0; i < size; i++ {
		x := float64(i - radius)
		g1[i] = -x / s2 * g0[i]
		g2[i] = (x*x/(s2*s2) - 1/s2) * g0[i]
		sum2 += g2[i]
	}
	// Truncation leaves a small DC term in g2; remove it so flat input has
	// zero curvature.
	for i := range g2 {
		g2[i] -= sum2 * g0[i]
	}
	return g0, g1, g2
}

// reflectIndex maps any index onto [0, size) by mirroring at the borders with
// the edge sample repeated.
func reflectIndex(idx, size int) int {
	if size == 1 {
		return 0
	}
	period := 2 * size
	idx %= period
	if idx < 0 {
		idx += period
	}
	if idx >= size {
		idx = period - 1 - idx
	}
	return idx
}
