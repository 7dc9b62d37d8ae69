package ridge

import (
	"fmt"
	"math"

	"github.com/ironsheep/ridgemap/internal/raster"
)

// Preprocess returns a filter-ready copy of data. NaN cells, and cells equal
// to the nodata sentinel when one is given, are replaced by the median of the
// remaining cells. Values above clipMax are then clamped to clipMax; low
// values are left alone so genuine low-valued ridges survive.
func Preprocess(data *raster.Raster, nodata *float64, clipMax float64) (*raster.Raster, error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	if math.IsNaN(clipMax) {
		return nil, fmt.Errorf("preprocess: clip ceiling must not be NaN")
	}

	fill, err := raster.Median(raster.Valid(data, nodata))
	if err != nil {
		return nil, &DegenerateInputError{Width: data.Width, Height: data.Height}
	}

	out := data.Like()
	for i, v := range data.Data {
		if raster.IsMissing(v, nodata) {
			v = fill
		}
		if v > clipMax {
			v = clipMax
		}
		out.Data[i] = v
	}
	return out, nil
}
