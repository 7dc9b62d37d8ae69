package raster

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrNoValidSamples is returned by statistics that are undefined on an empty
// sample set.
var ErrNoValidSamples = errors.New("no valid samples")

// Valid returns a copy of the samples of r that are neither NaN nor equal to
// the nodata sentinel, in raster order.
func Valid(r *Raster, nodata *float64) []float64 {
	out := make([]float64, 0, len(r.Data))
	for _, v := range r.Data {
		if !IsMissing(v, nodata) {
			out = append(out, v)
		}
	}
	return out
}

// Median returns the median of values, averaging the two central order
// statistics for even counts. NaN values are ignored. The input is not
// modified.
func Median(values []float64) (float64, error) {
	return Percentile(values, 50)
}

// Percentile returns the p-th percentile (0-100) of values using linear
// interpolation between closest ranks, ignoring NaN values. The input is not
// modified.
func Percentile(values []float64, p float64) (float64, error) {
	sorted := sortedFinite(values)
	return PercentileSorted(sorted, p)
}

// Percentiles computes several percentiles with a single sort.
func Percentiles(values []float64, ps ...float64) ([]float64, error) {
	sorted := sortedFinite(values)
	out := make([]float64, len(ps))
	for i, p := range ps {
		v, err := PercentileSorted(sorted, p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// PercentileSorted is Percentile for an ascending, NaN-free slice.
func PercentileSorted(sorted []float64, p float64) (float64, error) {
	if math.IsNaN(p) || p < 0 || p > 100 {
		return 0, fmt.Errorf("percentile must be in [0, 100], got %v", p)
	}
	n := len(sorted)
	if n == 0 {
		return 0, ErrNoValidSamples
	}
	h := float64(n-1) * p / 100
	lo := int(math.Floor(h))
	hi := lo + 1
	if hi > n-1 {
		hi = n - 1
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo]), nil
}

func sortedFinite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

// MinMax returns the smallest and largest non-NaN samples of r. ok is false
// when r holds no non-NaN sample.
func MinMax(r *Raster) (min, max float64, ok bool) {
	valid := Valid(r, nil)
	if len(valid) == 0 {
		return 0, 0, false
	}
	return floats.Min(valid), floats.Max(valid), true
}

// Stats summarises the valid samples of a raster.
type Stats struct {
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	ValidCount   int     `json:"valid_count"`
	MissingCount int     `json:"missing_count"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Median       float64 `json:"median"`
	P2           float64 `json:"p2"`
	P98          float64 `json:"p98"`
}

// ComputeStats summarises r, treating NaN and the nodata sentinel as missing.
// It fails with ErrNoValidSamples if every sample is missing.
func ComputeStats(r *Raster, nodata *float64) (*Stats, error) {
	valid := Valid(r, nodata)
	if len(valid) == 0 {
		return nil, ErrNoValidSamples
	}

	mean, std := stat.MeanStdDev(valid, nil)
	if len(valid) < 2 {
		std = 0
	}

	sort.Float64s(valid)
	ps := make([]float64, 3)
	for i, p := range []float64{2, 50, 98} {
		ps[i], _ = PercentileSorted(valid, p)
	}

	return &Stats{
		Width:        r.Width,
		Height:       r.Height,
		ValidCount:   len(valid),
		MissingCount: r.Len() - len(valid),
		Min:          valid[0],
		Max:          valid[len(valid)-1],
		Mean:         mean,
		StdDev:       std,
		Median:       ps[1],
		P2:           ps[0],
		P98:          ps[2],
	}, nil
}
