package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/ridgemap/internal/composite"
)

// DefaultOpacity is the overlay opacity used when Options.Opacity is zero.
const DefaultOpacity = 0.7

// Options controls how a composite is drawn.
type Options struct {
	// Opacity of both overlays in (0, 1]. Zero selects DefaultOpacity.
	Opacity float64

	// Scale is an integer upscale factor applied with nearest-neighbour
	// resampling. Values below 2 leave the image at raster resolution.
	Scale int

	// GridSpacing draws a coordinate grid every GridSpacing raster cells
	// when positive.
	GridSpacing int

	// GridColor is a hex colour (#RRGGBB or #RRGGBBAA) for the grid.
	GridColor string
}

// Result is an encoded rendering for transport.
type Result struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Composite draws c: the background in grey stretched to its display range,
// the bright overlay on the Reds ramp and the dark overlay on the Blues ramp,
// each ramp spanning the polarity's threshold to 1.
func Composite(c *composite.Composite, opts Options) (*image.NRGBA, error) {
	if c == nil || c.Background == nil || c.Bright == nil || c.Dark == nil {
		return nil, fmt.Errorf("incomplete composite")
	}
	opacity := opts.Opacity
	if opacity == 0 {
		opacity = DefaultOpacity
	}
	if !(opacity > 0 && opacity <= 1) {
		return nil, fmt.Errorf("opacity must be in (0, 1], got %v", opts.Opacity)
	}
	if opts.Scale < 0 {
		return nil, fmt.Errorf("scale must be non-negative, got %d", opts.Scale)
	}

	img := Background(c)
	img = imaging.Overlay(img, OverlayImage(c.Bright, c.Width, c.Height, Reds), image.Pt(0, 0), opacity)
	img = imaging.Overlay(img, OverlayImage(c.Dark, c.Width, c.Height, Blues), image.Pt(0, 0), opacity)

	scale := 1
	if opts.Scale > 1 {
		scale = opts.Scale
		img = imaging.Clone(transform.Resize(img, c.Width*scale, c.Height*scale, transform.NearestNeighbor))
	}
	if opts.GridSpacing > 0 {
		DrawGrid(img, opts.GridSpacing, scale, true, opts.GridColor)
	}
	return img, nil
}

// Background renders the composite background in grey. Cells at or below
// the low end of the display range are black, cells at or above the high end
// white. NaN cells are black. A zero-width range renders valid cells mid grey.
func Background(c *composite.Composite) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, c.Width, c.Height))
	lo, hi := c.BackgroundRange.Low, c.BackgroundRange.High
	span := hi - lo

	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			v := c.Background.At(x, y)
			var g uint8
			switch {
			case math.IsNaN(v):
				g = 0
			case !(span > 0):
				g = 128
			default:
				g = uint8(math.Round(clamp01((v-lo)/span) * 255))
			}
			img.SetNRGBA(x, y, color.NRGBA{R: g, G: g, B: g, A: 255})
		}
	}
	return img
}

// OverlayImage renders one polarity's kept cells through ramp, mapping the
// threshold to the ramp's low end and 1 to its high end. Masked cells are
// fully transparent.
func OverlayImage(o *composite.Overlay, width, height int, ramp Ramp) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	span := 1 - o.Threshold

	for i, keep := range o.Mask {
		if !keep {
			continue
		}
		t := 1.0
		if span > 0 {
			t = clamp01((o.Response.Data[i] - o.Threshold) / span)
		}
		img.SetNRGBA(i%width, i/width, ramp.NRGBA(t))
	}
	return img
}

// Save writes img to path in the format implied by its extension (png, jpg,
// jpeg, gif, tif, tiff or bmp).
func Save(img image.Image, path string) error {
	if _, err := imaging.FormatFromFilename(path); err != nil {
		return fmt.Errorf("unsupported output format for %s: %w", path, err)
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// EncodePNG encodes img as a base64 PNG Result.
func EncodePNG(img image.Image) (*Result, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	b := img.Bounds()
	return &Result{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
