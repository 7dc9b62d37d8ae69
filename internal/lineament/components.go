package lineament

import "fmt"

// Bounds is an inclusive bounding box in raster cells.
type Bounds struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Component is one 8-connected group of mask cells.
type Component struct {
	Size      int     `json:"size"`
	Bounds    Bounds  `json:"bounds"`
	CentroidX float64 `json:"centroid_x"`
	CentroidY float64 `json:"centroid_y"`

	// Elongation is the longer bounding box side over the shorter one. Thin
	// linear structures score high, blobs near 1.
	Elongation float64 `json:"elongation"`
}

// Components labels the 8-connected groups of true cells in mask and returns
// those with at least minSize cells, in scan order of their first cell.
func Components(mask []bool, width, height, minSize int) ([]Component, error) {
	if width <= 0 || height <= 0 || len(mask) != width*height {
		return nil, fmt.Errorf("invalid mask: %dx%d with %d cells", width, height, len(mask))
	}

	visited := make([]bool, len(mask))
	comps := make([]Component, 0)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if !mask[i] || visited[i] {
				continue
			}
			cells := floodFill(mask, visited, x, y, width, height)
			if len(cells) < minSize {
				continue
			}
			comps = append(comps, summarize(cells))
		}
	}
	return comps, nil
}

// floodFill performs iterative flood-fill from a starting point.
//
// Uses a stack rather than recursion so large components cannot overflow
// the goroutine stack. Uses 8-connectivity.
func floodFill(mask, visited []bool, startX, startY, width, height int) []Point {
	cells := make([]Point, 0)
	stack := []Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		i := p.Y*width + p.X
		if visited[i] || !mask[i] {
			continue
		}

		visited[i] = true
		cells = append(cells, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
	return cells
}

func summarize(cells []Point) Component {
	b := Bounds{X1: cells[0].X, Y1: cells[0].Y, X2: cells[0].X, Y2: cells[0].Y}
	var sx, sy float64
	for _, p := range cells {
		b.X1 = min(b.X1, p.X)
		b.Y1 = min(b.Y1, p.Y)
		b.X2 = max(b.X2, p.X)
		b.Y2 = max(b.Y2, p.Y)
		sx += float64(p.X)
		sy += float64(p.Y)
	}
	n := float64(len(cells))

	w, h := float64(b.X2-b.X1+1), float64(b.Y2-b.Y1+1)
	return Component{
		Size:       len(cells),
		Bounds:     b,
		CentroidX:  sx / n,
		CentroidY:  sy / n,
		Elongation: max(w, h) / min(w, h),
	}
}
