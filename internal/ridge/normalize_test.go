package ridge

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ironsheep/ridgemap/internal/raster"
)

func TestNormalize_Range(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for trial := 0; trial < 20; trial++ {
		r, _ := raster.New(7, 5)
		for i := range r.Data {
			r.Data[i] = rng.NormFloat64()*50 - 10
		}

		out := Normalize(r)
		lo, hi, ok := raster.MinMax(out)
		if !ok {
			t.Fatal("MinMax reported no valid samples")
		}
		if lo != 0 || hi != 1 {
			t.Errorf("trial %d: range [%v, %v], want [0, 1]", trial, lo, hi)
		}
	}
}

func TestNormalize_Values(t *testing.T) {
	r := mustRaster(t, 5, 1, []float64{2, 4, 6, 8, 10})
	want := []float64{0, 0.25, 0.5, 0.75, 1}

	got := Normalize(r)
	if diff := cmp.Diff(want, got.Data, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_Constant(t *testing.T) {
	tests := []struct {
		name string
		data []float64
	}{
		{"constant", []float64{3, 3, 3, 3}},
		{"zeros", []float64{0, 0, 0, 0}},
		{"constant with nan", []float64{math.NaN(), 7, 7, math.NaN()}},
		{"all nan", []float64{math.NaN(), math.NaN(), math.NaN(), math.NaN()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(mustRaster(t, 2, 2, tt.data))
			if diff := cmp.Diff([]float64{0, 0, 0, 0}, got.Data); diff != "" {
				t.Errorf("expected all zeros (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	r, _ := raster.New(9, 9)
	for i := range r.Data {
		r.Data[i] = rng.Float64() * 1000
	}
	r.Data[4] = math.NaN()

	once := Normalize(r)
	twice := Normalize(once)
	if diff := cmp.Diff(once.Data, twice.Data, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("Normalize not idempotent (-once +twice):\n%s", diff)
	}

	constant, _ := raster.Filled(3, 3, 2)
	z := Normalize(constant)
	if diff := cmp.Diff(z.Data, Normalize(z).Data); diff != "" {
		t.Errorf("Normalize not idempotent on constant input:\n%s", diff)
	}
}

func TestNormalize_KeepsNaN(t *testing.T) {
	got := Normalize(mustRaster(t, 3, 1, []float64{1, math.NaN(), 3}))
	if got.Data[0] != 0 || !math.IsNaN(got.Data[1]) || got.Data[2] != 1 {
		t.Errorf("got %v, want [0 NaN 1]", got.Data)
	}
}
