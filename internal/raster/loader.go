package raster

import (
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/tiff"
)

// Cache provides thread-safe caching of decoded rasters to avoid redundant
// disk reads when the same band is analysed several times.
//
// Cached rasters are shared between callers and must be treated as
// read-only. Cached rasters remain in memory until explicitly removed via
// Evict() or Clear(); a single Sentinel-2 10 m band is roughly 120 million
// samples, so long-running processes should evict bands they are done with.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	raster   *Raster
	bitDepth int
}

// NewCache creates an empty raster cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*entry),
	}
}

// Load retrieves a raster from the cache or decodes it from disk if not
// cached. The path string is the cache key; relative and absolute paths to
// the same file produce separate entries.
func (c *Cache) Load(path string) (*Raster, error) {
	e, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return e.raster, nil
}

func (c *Cache) load(path string) (*entry, error) {
	c.mu.RLock()
	if e, ok := c.entries[path]; ok {
		c.mu.RUnlock()
		return e, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raster: %w", err)
	}
	r, depth, err := fromImage(img)
	if err != nil {
		return nil, err
	}
	e := &entry{raster: r, bitDepth: depth}

	c.mu.Lock()
	c.entries[path] = e
	c.mu.Unlock()

	return e, nil
}

// Clear removes all rasters from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.mu.Unlock()
}

// Evict removes a specific raster from the cache by its path. Unknown paths
// are ignored.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// Load decodes an image file into a raster without caching.
func Load(path string) (*Raster, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raster: %w", err)
	}
	r, _, err := fromImage(img)
	return r, err
}

// FromImage converts a decoded image into a raster. Grey images keep their
// native sample values; colour images are reduced to BT.601 luma in 0-255.
func FromImage(img image.Image) (*Raster, error) {
	r, _, err := fromImage(img)
	return r, err
}

func fromImage(img image.Image) (*Raster, int, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	r, err := New(width, height)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to convert image: %w", err)
	}

	depth := 8
	switch im := img.(type) {
	case *image.Gray16:
		depth = 16
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r.Data[y*width+x] = float64(im.Gray16At(x+bounds.Min.X, y+bounds.Min.Y).Y)
			}
		}
	case *image.Gray:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r.Data[y*width+x] = float64(im.GrayAt(x+bounds.Min.X, y+bounds.Min.Y).Y)
			}
		}
	default:
		switch img.(type) {
		case *image.RGBA64, *image.NRGBA64:
			depth = 16
		}
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				cr, cg, cb, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
				luma := 0.299*float64(cr) + 0.587*float64(cg) + 0.114*float64(cb)
				r.Data[y*width+x] = luma / 257
			}
		}
	}
	return r, depth, nil
}

// Info contains metadata about a raster file.
type Info struct {
	// Width is the raster width in samples.
	Width int `json:"width"`

	// Height is the raster height in samples.
	Height int `json:"height"`

	// Format is the detected file format: "png", "jpeg", "gif", "bmp",
	// "tiff" or "unknown". Detection is based on file extension.
	Format string `json:"format"`

	// BitDepth is the sample depth of the source: 8 or 16.
	BitDepth int `json:"bit_depth"`

	// FileSizeBytes is the size of the file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadInfo loads a raster into the cache (if not already cached) and
// returns its metadata.
func LoadInfo(cache *Cache, path string) (*Info, error) {
	e, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	case ".bmp":
		format = "bmp"
	case ".tif", ".tiff":
		format = "tiff"
	}

	return &Info{
		Width:         e.raster.Width,
		Height:        e.raster.Height,
		Format:        format,
		BitDepth:      e.bitDepth,
		FileSizeBytes: stat.Size(),
	}, nil
}

// WriteTIFF encodes r as a deflate-compressed 16-bit grey TIFF, mapping
// [lo, hi] linearly onto 0-65535. Samples outside the range are clamped and
// NaN samples are written as 0.
func WriteTIFF(w io.Writer, r *Raster, lo, hi float64) error {
	if hi <= lo {
		return fmt.Errorf("invalid TIFF range [%v, %v]", lo, hi)
	}
	img := image.NewGray16(image.Rect(0, 0, r.Width, r.Height))
	span := hi - lo
	for i, v := range r.Data {
		if math.IsNaN(v) {
			continue
		}
		t := (v - lo) / span
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
		q := uint16(math.Round(t * 65535))
		img.Pix[2*i] = uint8(q >> 8)
		img.Pix[2*i+1] = uint8(q)
	}
	if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true}); err != nil {
		return fmt.Errorf("failed to encode TIFF: %w", err)
	}
	return nil
}

// SaveTIFF writes r to path with WriteTIFF.
func SaveTIFF(path string, r *Raster, lo, hi float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create TIFF: %w", err)
	}
	if err := WriteTIFF(f, r, lo, hi); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
