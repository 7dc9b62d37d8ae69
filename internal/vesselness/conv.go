package vesselness

import "fmt"

// Convolver applies a separable 2-D convolution with reflect borders.
//
// kx runs along rows (the x axis) and ky along columns (the y axis). Both
// kernels have odd length and are centred. The result is a true
// convolution, so antisymmetric kernels are not flipped by the caller.
type Convolver interface {
	SepFilter(src []float64, width, height int, kx, ky []float64) ([]float64, error)
}

// DefaultConvolver returns the backend selected at build time.
func DefaultConvolver() Convolver {
	return newDefaultConvolver()
}

// PureConvolver is the portable Go implementation of Convolver.
type PureConvolver struct{}

// SepFilter implements Convolver.
func (PureConvolver) SepFilter(src []float64, width, height int, kx, ky []float64) ([]float64, error) {
	if err := checkSepArgs(src, width, height, kx, ky); err != nil {
		return nil, err
	}

	rx := len(kx) / 2
	ry := len(ky) / 2

	tmp := make([]float64, len(src))
	for y := 0; y < height; y++ {
		row := src[y*width : (y+1)*width]
		for x := 0; x < width; x++ {
			var sum float64
			for k, w := range kx {
				sum += row[reflectIndex(x-(k-rx), width)] * w
			}
			tmp[y*width+x] = sum
		}
	}

	out := make([]float64, len(src))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			for k, w := range ky {
				sum += tmp[reflectIndex(y-(k-ry), height)*width+x] * w
			}
			out[y*width+x] = sum
		}
	}
	return out, nil
}

func checkSepArgs(src []float64, width, height int, kx, ky []float64) error {
	if width <= 0 || height <= 0 || len(src) != width*height {
		return fmt.Errorf("invalid convolution input: %dx%d with %d samples", width, height, len(src))
	}
	if len(kx)%2 == 0 || len(ky)%2 == 0 {
		return fmt.Errorf("kernel lengths must be odd, got %d and %d", len(kx), len(ky))
	}
	return nil
}
