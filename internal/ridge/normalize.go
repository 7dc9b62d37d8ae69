package ridge

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/ridgemap/internal/raster"
)

// Normalize rescales r to [0, 1] by its own NaN-aware minimum and maximum.
// NaN cells stay NaN. A constant raster, or one with no finite cell, maps to
// all zeros: a flat response carries no ridge evidence.
func Normalize(r *raster.Raster) *raster.Raster {
	lo, hi, ok := raster.MinMax(r)
	if !ok || hi == lo || math.IsInf(hi-lo, 0) {
		return r.Like()
	}

	out := r.Clone()
	floats.AddConst(-lo, out.Data)
	span := hi - lo
	for i, v := range out.Data {
		out.Data[i] = math.Min(v/span, 1)
	}
	return out
}
