package raster

import "fmt"

// Region is a rectangular window with an inclusive top-left corner (X1, Y1)
// and an exclusive bottom-right corner (X2, Y2).
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Crop copies the samples inside region into a new raster.
func Crop(r *Raster, region Region) (*Raster, error) {
	x1, y1, x2, y2 := region.X1, region.Y1, region.X2, region.Y2
	if x1 < 0 || y1 < 0 || x2 > r.Width || y2 > r.Height {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside raster bounds (0,0)-(%d,%d)",
			x1, y1, x2, y2, r.Width, r.Height)
	}
	if x1 >= x2 || y1 >= y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	out, err := New(x2-x1, y2-y1)
	if err != nil {
		return nil, err
	}
	for y := y1; y < y2; y++ {
		copy(out.Data[(y-y1)*out.Width:(y-y1+1)*out.Width], r.Data[y*r.Width+x1:y*r.Width+x2])
	}
	return out, nil
}
