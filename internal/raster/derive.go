package raster

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Scale returns gain*v + offset for every sample. Missing samples (NaN or the
// nodata sentinel) are copied unchanged so they remain recognisable
// downstream. Sentinel-2 L2A digital numbers become reflectance with
// gain 1e-4 and offset 0.
func Scale(r *Raster, gain, offset float64, nodata *float64) *Raster {
	out := r.Like()
	for i, v := range r.Data {
		if IsMissing(v, nodata) {
			out.Data[i] = v
			continue
		}
		out.Data[i] = gain*v + offset
	}
	return out
}

// Standardize converts valid samples to z-scores, (v - mean) / stddev.
// Missing samples are copied unchanged. A raster whose valid samples have
// zero spread standardizes to zeros.
func Standardize(r *Raster, nodata *float64) (*Raster, error) {
	valid := Valid(r, nodata)
	if len(valid) == 0 {
		return nil, ErrNoValidSamples
	}
	mean, std := stat.MeanStdDev(valid, nil)
	if len(valid) < 2 || std == 0 || math.IsNaN(std) {
		std = 0
	}

	out := r.Like()
	for i, v := range r.Data {
		switch {
		case IsMissing(v, nodata):
			out.Data[i] = v
		case std == 0:
			out.Data[i] = 0
		default:
			out.Data[i] = (v - mean) / std
		}
	}
	return out, nil
}

// NormalizedDifference computes (a - b) / (a + b) per sample, the form shared
// by NDVI (B08, B04), NDWI (B03, B08) and similar band indices. Cells where
// either input is missing or a + b == 0 become NaN.
func NormalizedDifference(a, b *Raster, nodata *float64) (*Raster, error) {
	if !a.SameShape(b) {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrInvalidShape, a.Width, a.Height, b.Width, b.Height)
	}
	out := a.Like()
	for i := range a.Data {
		va, vb := a.Data[i], b.Data[i]
		sum := va + vb
		if IsMissing(va, nodata) || IsMissing(vb, nodata) || sum == 0 {
			out.Data[i] = math.NaN()
			continue
		}
		out.Data[i] = (va - vb) / sum
	}
	return out, nil
}

// MaskValue returns a copy of r with every sample equal to the nodata
// sentinel replaced by NaN. A nil sentinel yields a plain copy.
func MaskValue(r *Raster, nodata *float64) *Raster {
	out := r.Clone()
	if nodata == nil {
		return out
	}
	for i, v := range out.Data {
		if v == *nodata {
			out.Data[i] = math.NaN()
		}
	}
	return out
}
