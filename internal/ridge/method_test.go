package ridge

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		input   string
		want    Method
		wantErr bool
	}{
		{"frangi", MethodFrangi, false},
		{"Frangi", MethodFrangi, false},
		{"  MEIJERING\n", MethodMeijering, false},
		{"meijering", MethodMeijering, false},
		{"sato", 0, true},
		{"", 0, true},
		{"frangi2", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMethod(tt.input)
			if tt.wantErr {
				var methodErr *UnsupportedMethodError
				if !errors.As(err, &methodErr) {
					t.Fatalf("expected *UnsupportedMethodError, got %v", err)
				}
				if methodErr.Method != tt.input {
					t.Errorf("error method: got %q, want %q", methodErr.Method, tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMethod_JSON(t *testing.T) {
	var cfg struct {
		Method Method `json:"method"`
	}
	if err := json.Unmarshal([]byte(`{"method": "Meijering"}`), &cfg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if cfg.Method != MethodMeijering {
		t.Errorf("got %v, want meijering", cfg.Method)
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"method":"meijering"}` {
		t.Errorf("got %s", data)
	}

	err = json.Unmarshal([]byte(`{"method": "hessian"}`), &cfg)
	if !errors.Is(err, ErrUnsupportedMethod) {
		t.Errorf("expected ErrUnsupportedMethod, got %v", err)
	}
}

func TestMethod_Filter(t *testing.T) {
	tests := []struct {
		name    string
		method  Method
		params  Params
		wantErr bool
	}{
		{"frangi defaults", MethodFrangi, nil, false},
		{"frangi all params", MethodFrangi, Params{"alpha": 0.5, "beta": 1, "gamma": 15}, false},
		{"frangi case-insensitive key", MethodFrangi, Params{"Beta": 1}, false},
		{"frangi unknown key", MethodFrangi, Params{"sigma": 1}, true},
		{"meijering alpha", MethodMeijering, Params{"alpha": -0.5}, false},
		{"meijering rejects beta", MethodMeijering, Params{"beta": 1}, true},
		{"invalid method", Method(9), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := tt.method.Filter(tt.params)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f == nil {
				t.Fatal("nil filter")
			}
		})
	}
}

func TestMethod_FilterPassesParams(t *testing.T) {
	f, err := MethodFrangi.Filter(Params{"beta": 2, "gamma": 3})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	ff, ok := f.(frangiFilter)
	if !ok {
		t.Fatalf("got %T, want frangiFilter", f)
	}
	if ff.opts.Beta != 2 || ff.opts.Gamma != 3 || ff.opts.Alpha != 0.5 {
		t.Errorf("options: got %+v", ff.opts)
	}
}

func TestMethod_FilterDefaultsAndExplicitZero(t *testing.T) {
	f, _ := MethodFrangi.Filter(nil)
	if g := f.(frangiFilter).opts.Gamma; !math.IsNaN(g) {
		t.Errorf("default gamma: got %v, want automatic (NaN)", g)
	}
	f, _ = MethodFrangi.Filter(Params{"gamma": 0})
	if g := f.(frangiFilter).opts.Gamma; g != 0 {
		t.Errorf("explicit gamma: got %v, want 0", g)
	}

	f, _ = MethodMeijering.Filter(nil)
	if a := f.(meijeringFilter).opts.Alpha; a != 1.0/3.0 {
		t.Errorf("default alpha: got %v, want 1/3", a)
	}
	f, _ = MethodMeijering.Filter(Params{"alpha": 0})
	if a := f.(meijeringFilter).opts.Alpha; a != 0 {
		t.Errorf("explicit alpha: got %v, want 0", a)
	}
}

func TestScaleRange_Validate(t *testing.T) {
	tests := []struct {
		name    string
		scales  ScaleRange
		wantErr bool
	}{
		{"default", DefaultScales(), false},
		{"single", ScaleRange{0.5}, false},
		{"empty", ScaleRange{}, true},
		{"nil", nil, true},
		{"zero", ScaleRange{0, 1}, true},
		{"negative", ScaleRange{-1}, true},
		{"nan", ScaleRange{1, math.NaN()}, true},
		{"inf", ScaleRange{1, math.Inf(1)}, true},
		{"repeated", ScaleRange{2, 2}, true},
		{"decreasing", ScaleRange{4, 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scales.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidScaleRange) {
					t.Errorf("expected ErrInvalidScaleRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDefaultScales(t *testing.T) {
	s := DefaultScales()
	if len(s) != 3 || s[0] != 2 || s[1] != 4 || s[2] != 6 {
		t.Errorf("got %v, want [2 4 6]", s)
	}
}
