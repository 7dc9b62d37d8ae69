package render

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
)

// DrawGrid draws a coordinate grid onto img in place. spacing is in raster
// cells and scale is the factor img was upscaled by, so lines and labels
// refer to raster coordinates rather than output pixels.
func DrawGrid(img *image.NRGBA, spacing, scale int, showCoordinates bool, colorHex string) {
	if spacing <= 0 {
		return
	}
	if scale < 1 {
		scale = 1
	}

	gridColor, err := parseHexColor(colorHex)
	if err != nil {
		gridColor = color.NRGBA{R: 255, G: 255, B: 0, A: 160} // semi-transparent yellow
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	step := spacing * scale

	for x := step; x < width; x += step {
		for y := 0; y < height; y++ {
			blend(img, x, y, gridColor)
		}
	}
	for y := step; y < height; y += step {
		for x := 0; x < width; x++ {
			blend(img, x, y, gridColor)
		}
	}

	if showCoordinates {
		labelColor := color.NRGBA{255, 255, 255, 255}
		bgColor := color.NRGBA{0, 0, 0, 180}
		for y := step; y < height; y += step {
			for x := step; x < width; x += step {
				label := fmt.Sprintf("%d,%d", x/scale, y/scale)
				drawLabel(img, x+2, y+2, label, labelColor, bgColor)
			}
		}
	}
}

// blend composites c over the pixel at (x, y).
func blend(img *image.NRGBA, x, y int, c color.NRGBA) {
	if !(image.Point{x, y}.In(img.Bounds())) {
		return
	}
	if c.A == 255 {
		img.SetNRGBA(x, y, c)
		return
	}
	dst := img.NRGBAAt(x, y)
	a := uint32(c.A)
	mix := func(s, d uint8) uint8 {
		return uint8((uint32(s)*a + uint32(d)*(255-a)) / 255)
	}
	img.SetNRGBA(x, y, color.NRGBA{
		R: mix(c.R, dst.R),
		G: mix(c.G, dst.G),
		B: mix(c.B, dst.B),
		A: 255,
	})
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.NRGBA, error) {
	if len(hex) == 0 {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

// 3x5 pixel glyphs for digits and comma.
var glyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	',': {"000", "000", "000", "010", "010"},
}

// drawLabel draws text with the 3x5 glyph set on a filled box.
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	const charWidth = 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			blend(img, x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					blend(img, cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
