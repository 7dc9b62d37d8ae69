package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/ironsheep/ridgemap/internal/composite"
	"github.com/ironsheep/ridgemap/internal/ridge"
)

// DefaultConfigPath is the path to the canonical pipeline defaults file.
const DefaultConfigPath = "config/pipeline.defaults.json"

// EnvConfigPath names the environment variable holding a config file path
// for the CLI and the MCP server.
const EnvConfigPath = "RIDGEMAP_CONFIG"

// PipelineConfig holds every option of a detection run. Nil fields fall back
// to the defaults returned by the Get* accessors, so partial files are safe.
type PipelineConfig struct {
	// Raster derivation
	Gain        *float64 `json:"gain,omitempty"`
	Offset      *float64 `json:"offset,omitempty"`
	Standardize *bool    `json:"standardize,omitempty"`
	Nodata      *float64 `json:"nodata,omitempty"`

	// Preprocessing and detection
	Method       *string            `json:"method,omitempty"` // "frangi" or "meijering"
	Scales       []float64          `json:"scales,omitempty"`
	ClipMax      *float64           `json:"clip_max,omitempty"`
	FilterParams map[string]float64 `json:"filter_params,omitempty"`

	// Thresholds; manual values take precedence over percentiles
	ThreshBright *float64                  `json:"thresh_bright,omitempty"`
	ThreshDark   *float64                  `json:"thresh_dark,omitempty"`
	Percentiles  *composite.PercentilePair `json:"percentiles,omitempty"`

	// Rendering
	Opacity       *float64 `json:"opacity,omitempty"`
	RenderScale   *int     `json:"render_scale,omitempty"`
	GridSpacing   *int     `json:"grid_spacing,omitempty"`
	HistogramBins *int     `json:"histogram_bins,omitempty"`

	// Lineament extraction
	MinLineLength *int `json:"min_line_length,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyPipelineConfig returns a PipelineConfig with all fields unset.
func EmptyPipelineConfig() *PipelineConfig {
	return &PipelineConfig{}
}

// DefaultPipelineConfig returns a PipelineConfig with every field set to its
// default.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		Gain:          ptrFloat64(1),
		Offset:        ptrFloat64(0),
		Standardize:   ptrBool(false),
		Method:        ptrString("frangi"),
		Scales:        []float64(ridge.DefaultScales()),
		ClipMax:       ptrFloat64(3.0),
		Opacity:       ptrFloat64(0.7),
		RenderScale:   ptrInt(1),
		GridSpacing:   ptrInt(0),
		HistogramBins: ptrInt(50),
		MinLineLength: ptrInt(20),
	}
}

// LoadPipelineConfig loads a PipelineConfig from a JSON file.
// The file must have a .json extension and be at most 1MB.
// Fields omitted from the JSON file keep their defaults.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyPipelineConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads the file named by RIDGEMAP_CONFIG, or returns an empty
// config when the variable is unset.
func LoadFromEnv() (*PipelineConfig, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		return EmptyPipelineConfig(), nil
	}
	return LoadPipelineConfig(path)
}

// Validate checks that the configuration values are valid.
func (c *PipelineConfig) Validate() error {
	if c.Method != nil {
		if _, err := ridge.ParseMethod(*c.Method); err != nil {
			return err
		}
	}

	if c.Scales != nil {
		if err := ridge.ScaleRange(c.Scales).Validate(); err != nil {
			return err
		}
	}

	if c.ClipMax != nil && math.IsNaN(*c.ClipMax) {
		return fmt.Errorf("clip_max must be a number")
	}

	if c.Gain != nil && (*c.Gain == 0 || math.IsNaN(*c.Gain) || math.IsInf(*c.Gain, 0)) {
		return fmt.Errorf("gain must be finite and non-zero, got %v", *c.Gain)
	}

	for name, v := range map[string]*float64{"thresh_bright": c.ThreshBright, "thresh_dark": c.ThreshDark} {
		if v != nil && (math.IsNaN(*v) || *v < 0 || *v > 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %v", name, *v)
		}
	}

	if p := c.Percentiles; p != nil {
		if !inPercentRange(p.Bright) || !inPercentRange(p.Dark) {
			return fmt.Errorf("percentiles must be between 0 and 100, got %v/%v", p.Bright, p.Dark)
		}
	}

	if c.Opacity != nil && !(*c.Opacity > 0 && *c.Opacity <= 1) {
		return fmt.Errorf("opacity must be in (0, 1], got %v", *c.Opacity)
	}

	if c.RenderScale != nil && (*c.RenderScale < 1 || *c.RenderScale > 16) {
		return fmt.Errorf("render_scale must be between 1 and 16, got %d", *c.RenderScale)
	}

	if c.GridSpacing != nil && *c.GridSpacing < 0 {
		return fmt.Errorf("grid_spacing must be non-negative, got %d", *c.GridSpacing)
	}

	if c.HistogramBins != nil && *c.HistogramBins < 1 {
		return fmt.Errorf("histogram_bins must be positive, got %d", *c.HistogramBins)
	}

	if c.MinLineLength != nil && *c.MinLineLength < 1 {
		return fmt.Errorf("min_line_length must be positive, got %d", *c.MinLineLength)
	}

	if c.FilterParams != nil {
		if _, err := c.GetMethod().Filter(c.FilterParams); err != nil {
			return fmt.Errorf("invalid filter_params: %w", err)
		}
	}

	return nil
}

func inPercentRange(p float64) bool {
	return p >= 0 && p <= 100
}

// GetGain returns the gain or the default 1.
func (c *PipelineConfig) GetGain() float64 {
	if c.Gain == nil {
		return 1 // default
	}
	return *c.Gain
}

// GetOffset returns the offset or the default 0.
func (c *PipelineConfig) GetOffset() float64 {
	if c.Offset == nil {
		return 0
	}
	return *c.Offset
}

// GetStandardize returns the standardize flag or the default false.
func (c *PipelineConfig) GetStandardize() bool {
	if c.Standardize == nil {
		return false
	}
	return *c.Standardize
}

// GetMethod returns the configured method or Frangi. An unparseable value,
// which Validate would have rejected, also yields Frangi.
func (c *PipelineConfig) GetMethod() ridge.Method {
	if c.Method == nil {
		return ridge.MethodFrangi
	}
	m, err := ridge.ParseMethod(*c.Method)
	if err != nil {
		return ridge.MethodFrangi
	}
	return m
}

// GetScales returns the scale range or σ = 2, 4, 6.
func (c *PipelineConfig) GetScales() ridge.ScaleRange {
	if c.Scales == nil {
		return ridge.DefaultScales()
	}
	return ridge.ScaleRange(c.Scales)
}

// GetClipMax returns the clip ceiling or the default 3.0.
func (c *PipelineConfig) GetClipMax() float64 {
	if c.ClipMax == nil {
		return 3.0 // default
	}
	return *c.ClipMax
}

// GetFilterParams returns the extra filter parameters, possibly nil.
func (c *PipelineConfig) GetFilterParams() ridge.Params {
	return ridge.Params(c.FilterParams)
}

// ThresholdSpec returns the threshold settings in the form composite.Build
// takes.
func (c *PipelineConfig) ThresholdSpec() composite.ThresholdSpec {
	return composite.ThresholdSpec{
		Bright:      c.ThreshBright,
		Dark:        c.ThreshDark,
		Percentiles: c.Percentiles,
	}
}

// GetOpacity returns the overlay opacity or the default 0.7.
func (c *PipelineConfig) GetOpacity() float64 {
	if c.Opacity == nil {
		return 0.7 // default
	}
	return *c.Opacity
}

// GetRenderScale returns the upscale factor or the default 1.
func (c *PipelineConfig) GetRenderScale() int {
	if c.RenderScale == nil {
		return 1
	}
	return *c.RenderScale
}

// GetGridSpacing returns the grid spacing or the default 0 (no grid).
func (c *PipelineConfig) GetGridSpacing() int {
	if c.GridSpacing == nil {
		return 0
	}
	return *c.GridSpacing
}

// GetHistogramBins returns the histogram bin count or the default 50.
func (c *PipelineConfig) GetHistogramBins() int {
	if c.HistogramBins == nil {
		return 50 // default
	}
	return *c.HistogramBins
}

// GetMinLineLength returns the shortest lineament kept or the default 20.
func (c *PipelineConfig) GetMinLineLength() int {
	if c.MinLineLength == nil {
		return 20 // default
	}
	return *c.MinLineLength
}

// Merge returns a copy of c with every field set in o overriding c's.
func (c *PipelineConfig) Merge(o *PipelineConfig) *PipelineConfig {
	out := *c
	if o == nil {
		return &out
	}
	if o.Gain != nil {
		out.Gain = o.Gain
	}
	if o.Offset != nil {
		out.Offset = o.Offset
	}
	if o.Standardize != nil {
		out.Standardize = o.Standardize
	}
	if o.Nodata != nil {
		out.Nodata = o.Nodata
	}
	if o.Method != nil {
		out.Method = o.Method
	}
	if o.Scales != nil {
		out.Scales = o.Scales
	}
	if o.ClipMax != nil {
		out.ClipMax = o.ClipMax
	}
	if o.FilterParams != nil {
		out.FilterParams = o.FilterParams
	}
	if o.ThreshBright != nil {
		out.ThreshBright = o.ThreshBright
	}
	if o.ThreshDark != nil {
		out.ThreshDark = o.ThreshDark
	}
	if o.Percentiles != nil {
		out.Percentiles = o.Percentiles
	}
	if o.Opacity != nil {
		out.Opacity = o.Opacity
	}
	if o.RenderScale != nil {
		out.RenderScale = o.RenderScale
	}
	if o.GridSpacing != nil {
		out.GridSpacing = o.GridSpacing
	}
	if o.HistogramBins != nil {
		out.HistogramBins = o.HistogramBins
	}
	if o.MinLineLength != nil {
		out.MinLineLength = o.MinLineLength
	}
	return &out
}
