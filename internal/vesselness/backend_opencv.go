//go:build opencv

package vesselness

import (
	"fmt"
	"image"
	"unsafe"

	"gocv.io/x/gocv"
)

func newDefaultConvolver() Convolver { return OpenCVConvolver{} }

// OpenCVConvolver runs the separable convolution through OpenCV's
// sepFilter2D on CV_64F matrices.
type OpenCVConvolver struct{}

// SepFilter implements Convolver. OpenCV correlates rather than convolves, so
// both kernels are reversed before use.
func (OpenCVConvolver) SepFilter(src []float64, width, height int, kx, ky []float64) ([]float64, error) {
	if err := checkSepArgs(src, width, height, kx, ky); err != nil {
		return nil, err
	}

	in, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV64F, float64Bytes(src))
	if err != nil {
		return nil, fmt.Errorf("failed to wrap raster: %w", err)
	}
	defer in.Close()

	kxMat, err := gocv.NewMatFromBytes(1, len(kx), gocv.MatTypeCV64F, float64Bytes(reversed(kx)))
	if err != nil {
		return nil, fmt.Errorf("failed to wrap x kernel: %w", err)
	}
	defer kxMat.Close()

	kyMat, err := gocv.NewMatFromBytes(1, len(ky), gocv.MatTypeCV64F, float64Bytes(reversed(ky)))
	if err != nil {
		return nil, fmt.Errorf("failed to wrap y kernel: %w", err)
	}
	defer kyMat.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.SepFilter2D(in, &dst, gocv.MatTypeCV64F, kxMat, kyMat, image.Pt(-1, -1), 0, gocv.BorderReflect)

	data, err := dst.DataPtrFloat64()
	if err != nil {
		return nil, fmt.Errorf("failed to read filtered raster: %w", err)
	}
	out := make([]float64, len(data))
	copy(out, data)
	return out, nil
}

func reversed(k []float64) []float64 {
	out := make([]float64, len(k))
	for i, v := range k {
		out[len(k)-1-i] = v
	}
	return out
}

func float64Bytes(v []float64) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*8)
}
