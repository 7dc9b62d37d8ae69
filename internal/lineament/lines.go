package lineament

import (
	"fmt"
	"math"
	"sort"
)

// Point is a raster cell position.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Segment is a straight lineament found in a mask.
type Segment struct {
	Start        Point   `json:"start"`
	End          Point   `json:"end"`
	Length       float64 `json:"length"`
	AngleDegrees float64 `json:"angle_degrees"`
	Votes        int     `json:"votes"`
	Support      int     `json:"support"`
}

// Result contains extracted segments, strongest first.
type Result struct {
	Lineaments []Segment `json:"lineaments"`
	Count      int       `json:"count"`
}

// Options tunes Extract. Zero fields take the defaults listed.
type Options struct {
	// MinLength is the shortest segment kept, in cells. Default 20.
	MinLength int

	// MaxLines caps the number of segments returned. Default 50.
	MaxLines int

	// Tolerance is the largest distance, in cells, between a mask cell and
	// a Hough line for the cell to support it. Default 2.
	Tolerance float64

	// MaxGap is the largest run of unsupported cells bridged within one
	// segment. Default 3.
	MaxGap int
}

func (o Options) withDefaults() Options {
	if o.MinLength == 0 {
		o.MinLength = 20
	}
	if o.MaxLines == 0 {
		o.MaxLines = 50
	}
	if o.Tolerance == 0 {
		o.Tolerance = 2
	}
	if o.MaxGap == 0 {
		o.MaxGap = 3
	}
	return o
}

const numAngles = 180

// Extract finds straight segments of at least minLength cells among the true
// cells of a row-major mask.
func Extract(mask []bool, width, height, minLength int) (*Result, error) {
	return ExtractWith(mask, width, height, Options{MinLength: minLength})
}

// ExtractWith is Extract with full options.
//
// Mask cells vote in a (rho, theta) Hough accumulator at 1° resolution.
// Local maxima with at least MinLength/2 votes are visited strongest first;
// the cells within Tolerance of each peak's line are ordered along it and
// split wherever consecutive cells are more than MaxGap apart. Cells claimed
// by a segment are not reused, so one structure yields one segment.
func ExtractWith(mask []bool, width, height int, opts Options) (*Result, error) {
	if width <= 0 || height <= 0 || len(mask) != width*height {
		return nil, fmt.Errorf("invalid mask: %dx%d with %d cells", width, height, len(mask))
	}
	opts = opts.withDefaults()
	if opts.MinLength < 1 || opts.MaxLines < 1 || opts.MaxGap < 0 || !(opts.Tolerance > 0) {
		return nil, fmt.Errorf("invalid options: %+v", opts)
	}

	points := make([]Point, 0)
	for i, m := range mask {
		if m {
			points = append(points, Point{X: i % width, Y: i / width})
		}
	}
	result := &Result{Lineaments: make([]Segment, 0)}
	if len(points) == 0 {
		return result, nil
	}

	cosT := make([]float64, numAngles)
	sinT := make([]float64, numAngles)
	for theta := 0; theta < numAngles; theta++ {
		angle := float64(theta) * math.Pi / 180.0
		cosT[theta] = math.Cos(angle)
		sinT[theta] = math.Sin(angle)
	}

	// Vote in Hough space
	maxDist := int(math.Ceil(math.Hypot(float64(width), float64(height))))
	nRho := 2*maxDist + 1
	accumulator := make([][]int, nRho)
	for i := range accumulator {
		accumulator[i] = make([]int, numAngles)
	}
	for _, p := range points {
		for theta := 0; theta < numAngles; theta++ {
			rho := float64(p.X)*cosT[theta] + float64(p.Y)*sinT[theta]
			accumulator[int(math.Round(rho))+maxDist][theta]++
		}
	}

	peaks := findPeaks(accumulator, maxDist, max(opts.MinLength/2, 2))

	used := make([]bool, len(points))
	for _, peak := range peaks {
		if len(result.Lineaments) >= opts.MaxLines {
			break
		}
		cosA, sinA := cosT[peak.theta], sinT[peak.theta]
		rho := float64(peak.rho)

		type onLine struct {
			idx int
			t   float64
		}
		support := make([]onLine, 0)
		for i, p := range points {
			if used[i] {
				continue
			}
			if math.Abs(float64(p.X)*cosA+float64(p.Y)*sinA-rho) < opts.Tolerance {
				// Position along the line direction (-sin, cos).
				support = append(support, onLine{idx: i, t: -float64(p.X)*sinA + float64(p.Y)*cosA})
			}
		}
		if len(support) < 2 {
			continue
		}
		sort.Slice(support, func(i, j int) bool { return support[i].t < support[j].t })

		// Split the supporting cells into runs at gaps.
		start := 0
		for i := 1; i <= len(support); i++ {
			if i < len(support) && support[i].t-support[i-1].t <= float64(opts.MaxGap)+1 {
				continue
			}
			run := support[start:i]
			start = i

			a, b := points[run[0].idx], points[run[len(run)-1].idx]
			if b.X < a.X || (b.X == a.X && b.Y < a.Y) {
				a, b = b, a
			}
			length := math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
			if length < float64(opts.MinLength) {
				continue
			}
			for _, s := range run {
				used[s.idx] = true
			}
			result.Lineaments = append(result.Lineaments, Segment{
				Start:        a,
				End:          b,
				Length:       math.Round(length*10) / 10,
				AngleDegrees: orientation(a, b),
				Votes:        peak.votes,
				Support:      len(run),
			})
			if len(result.Lineaments) >= opts.MaxLines {
				break
			}
		}
	}

	result.Count = len(result.Lineaments)
	return result, nil
}

type peak struct {
	rho   int
	theta int
	votes int
}

// findPeaks returns accumulator local maxima (5x5 neighbourhood) with at
// least threshold votes, strongest first. Theta wraps at 180° with rho
// negated.
func findPeaks(acc [][]int, maxDist, threshold int) []peak {
	nRho := len(acc)
	peaks := make([]peak, 0)

	for r := 0; r < nRho; r++ {
		for theta := 0; theta < numAngles; theta++ {
			v := acc[r][theta]
			if v < threshold {
				continue
			}
			isMax := true
			for dr := -2; dr <= 2 && isMax; dr++ {
				for dt := -2; dt <= 2 && isMax; dt++ {
					if dr == 0 && dt == 0 {
						continue
					}
					nr, nt := r+dr, theta+dt
					if nt < 0 || nt >= numAngles {
						nt = (nt + numAngles) % numAngles
						nr = 2*maxDist - nr
					}
					if nr < 0 || nr >= nRho {
						continue
					}
					// Ties resolve to the first cell in scan order.
					n := acc[nr][nt]
					if n > v || (n == v && (nr < r || (nr == r && nt < theta))) {
						isMax = false
					}
				}
			}
			if isMax {
				peaks = append(peaks, peak{rho: r - maxDist, theta: theta, votes: v})
			}
		}
	}

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].votes > peaks[j].votes
	})
	return peaks
}

// orientation returns the undirected angle of a→b in degrees within
// [0, 180), measured from the +x axis with y pointing down.
func orientation(a, b Point) float64 {
	deg := math.Atan2(float64(b.Y-a.Y), float64(b.X-a.X)) * 180 / math.Pi
	if deg < 0 {
		deg += 180
	}
	if deg >= 180 {
		deg -= 180
	}
	return math.Round(deg*10) / 10
}
