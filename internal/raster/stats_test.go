package raster

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"odd count", []float64{3, 1, 2}, 2},
		{"even count", []float64{4, 1, 3, 2}, 2.5},
		{"single", []float64{7}, 7},
		{"ignores nan", []float64{math.NaN(), 1, 5, math.NaN(), 3}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Median(tt.values)
			if err != nil {
				t.Fatalf("Median failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMedian_DoesNotModifyInput(t *testing.T) {
	values := []float64{3, 1, 2}
	if _, err := Median(values); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{3, 1, 2}, values); diff != "" {
		t.Errorf("input modified (-want +got):\n%s", diff)
	}
}

func TestMedian_Empty(t *testing.T) {
	_, err := Median([]float64{math.NaN(), math.NaN()})
	if !errors.Is(err, ErrNoValidSamples) {
		t.Errorf("got %v, want ErrNoValidSamples", err)
	}
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{100, 4},
		{50, 2.5},
		{95, 3.85},
		{25, 1.75},
	}

	for _, tt := range tests {
		got, err := Percentile(values, tt.p)
		if err != nil {
			t.Fatalf("Percentile(%v) failed: %v", tt.p, err)
		}
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Percentile(%v): got %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestPercentile_OutOfRange(t *testing.T) {
	for _, p := range []float64{-1, 100.5, math.NaN()} {
		if _, err := Percentile([]float64{1, 2}, p); err == nil {
			t.Errorf("Percentile(%v): expected error", p)
		}
	}
}

func TestPercentiles(t *testing.T) {
	values := make([]float64, 101)
	for i := range values {
		values[i] = float64(100 - i)
	}
	got, err := Percentiles(values, 2, 50, 98)
	if err != nil {
		t.Fatalf("Percentiles failed: %v", err)
	}
	want := []float64{2, 50, 98}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Percentiles mismatch (-want +got):\n%s", diff)
	}
}

func TestMinMax(t *testing.T) {
	r, _ := FromData(2, 2, []float64{math.NaN(), -3, 8, 1})
	lo, hi, ok := MinMax(r)
	if !ok || lo != -3 || hi != 8 {
		t.Errorf("MinMax: got (%v, %v, %v), want (-3, 8, true)", lo, hi, ok)
	}

	allNaN, _ := Filled(2, 2, math.NaN())
	if _, _, ok := MinMax(allNaN); ok {
		t.Error("MinMax of all-NaN raster should report ok=false")
	}
}

func TestComputeStats(t *testing.T) {
	sentinel := -9999.0
	r, _ := FromData(3, 2, []float64{1, 2, 3, 4, -9999, math.NaN()})

	s, err := ComputeStats(r, &sentinel)
	if err != nil {
		t.Fatalf("ComputeStats failed: %v", err)
	}
	if s.ValidCount != 4 || s.MissingCount != 2 {
		t.Errorf("counts: got valid=%d missing=%d, want 4/2", s.ValidCount, s.MissingCount)
	}
	if s.Min != 1 || s.Max != 4 {
		t.Errorf("range: got [%v, %v], want [1, 4]", s.Min, s.Max)
	}
	if s.Mean != 2.5 || s.Median != 2.5 {
		t.Errorf("centre: got mean=%v median=%v, want 2.5", s.Mean, s.Median)
	}
	if math.Abs(s.StdDev-math.Sqrt(5.0/3.0)) > 1e-12 {
		t.Errorf("StdDev: got %v, want %v", s.StdDev, math.Sqrt(5.0/3.0))
	}
}

func TestComputeStats_SingleSample(t *testing.T) {
	r, _ := FromData(1, 1, []float64{5})
	s, err := ComputeStats(r, nil)
	if err != nil {
		t.Fatalf("ComputeStats failed: %v", err)
	}
	if s.StdDev != 0 {
		t.Errorf("StdDev of a single sample: got %v, want 0", s.StdDev)
	}
}

func TestComputeStats_AllMissing(t *testing.T) {
	r, _ := Filled(3, 3, math.NaN())
	if _, err := ComputeStats(r, nil); !errors.Is(err, ErrNoValidSamples) {
		t.Errorf("got %v, want ErrNoValidSamples", err)
	}
}
