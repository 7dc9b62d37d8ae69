package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Ramp is a sequential colour map interpolated in CIE L*a*b*.
type Ramp struct {
	stops []colorful.Color
}

// Reds is the warm ramp used for bright ridges.
var Reds = mustRamp("#fff5f0", "#fcbba1", "#fb6a4a", "#cb181d", "#67000d")

// Blues is the cool ramp used for dark ridges.
var Blues = mustRamp("#f7fbff", "#c6dbef", "#6baed6", "#2171b5", "#08306b")

// NewRamp builds a ramp through the given hex colours, low to high.
func NewRamp(hexes ...string) (Ramp, error) {
	if len(hexes) < 2 {
		return Ramp{}, fmt.Errorf("a ramp needs at least 2 colours, got %d", len(hexes))
	}
	stops := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return Ramp{}, fmt.Errorf("invalid ramp colour %q: %w", h, err)
		}
		stops[i] = c
	}
	return Ramp{stops: stops}, nil
}

func mustRamp(hexes ...string) Ramp {
	r, err := NewRamp(hexes...)
	if err != nil {
		panic(err)
	}
	return r
}

// At returns the colour at position t, clamped to [0, 1].
func (r Ramp) At(t float64) colorful.Color {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	pos := t * float64(len(r.stops)-1)
	i := int(pos)
	if i >= len(r.stops)-1 {
		return r.stops[len(r.stops)-1]
	}
	frac := pos - float64(i)
	if frac == 0 {
		return r.stops[i]
	}
	return r.stops[i].BlendLab(r.stops[i+1], frac).Clamped()
}

// NRGBA returns the colour at t as an opaque NRGBA value.
func (r Ramp) NRGBA(t float64) color.NRGBA {
	red, green, blue := r.At(t).RGB255()
	return color.NRGBA{R: red, G: green, B: blue, A: 255}
}
