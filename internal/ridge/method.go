package ridge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ironsheep/ridgemap/internal/raster"
	"github.com/ironsheep/ridgemap/internal/vesselness"
)

// Method selects a ridge filter.
type Method int

const (
	// MethodFrangi selects the Frangi vesselness filter.
	MethodFrangi Method = iota + 1

	// MethodMeijering selects the Meijering neuriteness filter.
	MethodMeijering
)

func (m Method) String() string {
	switch m {
	case MethodFrangi:
		return "frangi"
	case MethodMeijering:
		return "meijering"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod maps "frangi" or "meijering" (case-insensitive, surrounding
// whitespace ignored) to a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "frangi":
		return MethodFrangi, nil
	case "meijering":
		return MethodMeijering, nil
	default:
		return 0, &UnsupportedMethodError{Method: s}
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) {
	if m != MethodFrangi && m != MethodMeijering {
		return nil, &UnsupportedMethodError{Method: m.String()}
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Params holds filter-specific parameters passed through to the filter
// unchanged. Frangi accepts "alpha", "beta" and "gamma"; Meijering accepts
// "alpha". An absent key keeps the filter default: automatic gamma for
// Frangi, alpha = 1/3 for Meijering. An explicit zero is used as given.
type Params map[string]float64

// Filter is the ridge filter capability: a multi-scale response to the
// requested polarity, same shape as img, non-negative, higher meaning stronger
// ridge evidence.
type Filter interface {
	Response(img *raster.Raster, scales []float64, blackRidges bool) (*raster.Raster, error)
}

// Filter returns the filter for m configured with params. Unknown parameter
// keys are rejected.
func (m Method) Filter(params Params) (Filter, error) {
	switch m {
	case MethodFrangi:
		opts := vesselness.DefaultFrangiOptions()
		err := applyParams(m, params, map[string]*float64{
			"alpha": &opts.Alpha,
			"beta":  &opts.Beta,
			"gamma": &opts.Gamma,
		})
		if err != nil {
			return nil, err
		}
		return frangiFilter{opts: opts}, nil
	case MethodMeijering:
		opts := vesselness.DefaultMeijeringOptions()
		if err := applyParams(m, params, map[string]*float64{"alpha": &opts.Alpha}); err != nil {
			return nil, err
		}
		return meijeringFilter{opts: opts}, nil
	default:
		return nil, &UnsupportedMethodError{Method: m.String()}
	}
}

func applyParams(m Method, params Params, targets map[string]*float64) error {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		dst, ok := targets[strings.ToLower(k)]
		if !ok {
			return fmt.Errorf("%s does not accept parameter %q", m, k)
		}
		*dst = params[k]
	}
	return nil
}

type frangiFilter struct {
	opts vesselness.FrangiOptions
}

func (f frangiFilter) Response(img *raster.Raster, scales []float64, blackRidges bool) (*raster.Raster, error) {
	return vesselness.Frangi(img, scales, blackRidges, f.opts)
}

type meijeringFilter struct {
	opts vesselness.MeijeringOptions
}

func (f meijeringFilter) Response(img *raster.Raster, scales []float64, blackRidges bool) (*raster.Raster, error) {
	return vesselness.Meijering(img, scales, blackRidges, f.opts)
}
