package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/ridgemap/internal/composite"
	"github.com/ironsheep/ridgemap/internal/ridge"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultPipelineConfig(t *testing.T) {
	cfg := DefaultPipelineConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ridge.MethodFrangi, cfg.GetMethod())
	assert.Equal(t, ridge.ScaleRange{2, 4, 6}, cfg.GetScales())
	assert.Equal(t, 3.0, cfg.GetClipMax())
	assert.Equal(t, 0.7, cfg.GetOpacity())
	assert.Equal(t, 1, cfg.GetRenderScale())
	assert.Equal(t, 50, cfg.GetHistogramBins())
	assert.Equal(t, 20, cfg.GetMinLineLength())
	assert.Nil(t, cfg.Nodata)
}

func TestEmptyPipelineConfigGetters(t *testing.T) {
	cfg := EmptyPipelineConfig()
	def := DefaultPipelineConfig()

	assert.Equal(t, def.GetGain(), cfg.GetGain())
	assert.Equal(t, def.GetOffset(), cfg.GetOffset())
	assert.Equal(t, def.GetStandardize(), cfg.GetStandardize())
	assert.Equal(t, def.GetMethod(), cfg.GetMethod())
	assert.Equal(t, def.GetScales(), cfg.GetScales())
	assert.Equal(t, def.GetClipMax(), cfg.GetClipMax())
	assert.Equal(t, def.GetOpacity(), cfg.GetOpacity())
	assert.Equal(t, def.GetRenderScale(), cfg.GetRenderScale())
	assert.Equal(t, def.GetGridSpacing(), cfg.GetGridSpacing())
	assert.Equal(t, def.GetHistogramBins(), cfg.GetHistogramBins())
	assert.Equal(t, def.GetMinLineLength(), cfg.GetMinLineLength())
	assert.Nil(t, cfg.GetFilterParams())
}

func TestLoadPipelineConfig(t *testing.T) {
	path := writeConfig(t, "run.json", `{
  "method": "Meijering",
  "scales": [1, 3],
  "clip_max": 2.5,
  "nodata": -9999,
  "filter_params": {"alpha": -0.5},
  "thresh_bright": 0.5,
  "percentiles": {"bright": 90, "dark": 97},
  "gain": 0.0001,
  "standardize": true,
  "render_scale": 2
}`)

	cfg, err := LoadPipelineConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ridge.MethodMeijering, cfg.GetMethod())
	assert.Equal(t, ridge.ScaleRange{1, 3}, cfg.GetScales())
	assert.Equal(t, 2.5, cfg.GetClipMax())
	require.NotNil(t, cfg.Nodata)
	assert.Equal(t, -9999.0, *cfg.Nodata)
	assert.Equal(t, ridge.Params{"alpha": -0.5}, cfg.GetFilterParams())
	assert.Equal(t, 0.0001, cfg.GetGain())
	assert.True(t, cfg.GetStandardize())
	assert.Equal(t, 2, cfg.GetRenderScale())

	// Omitted fields keep their defaults.
	assert.Equal(t, 0.7, cfg.GetOpacity())

	spec := cfg.ThresholdSpec()
	require.NotNil(t, spec.Bright)
	assert.Equal(t, 0.5, *spec.Bright)
	assert.Nil(t, spec.Dark)
	assert.Equal(t, &composite.PercentilePair{Bright: 90, Dark: 97}, spec.Percentiles)
}

func TestLoadPipelineConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "run.yaml", `{}`, ".json extension"},
		{"bad json", "run.json", `{"clip_max": "high"`, "failed to parse"},
		{"unknown method", "run.json", `{"method": "sato"}`, "unsupported method"},
		{"empty scales", "run.json", `{"scales": []}`, "invalid scale range"},
		{"decreasing scales", "run.json", `{"scales": [4, 2]}`, "strictly increasing"},
		{"threshold above one", "run.json", `{"thresh_dark": 1.5}`, "thresh_dark"},
		{"percentile out of range", "run.json", `{"percentiles": {"bright": 101, "dark": 50}}`, "percentiles"},
		{"zero opacity", "run.json", `{"opacity": 0}`, "opacity"},
		{"render scale", "run.json", `{"render_scale": 0}`, "render_scale"},
		{"zero gain", "run.json", `{"gain": 0}`, "gain"},
		{"bad filter param", "run.json", `{"method": "meijering", "filter_params": {"beta": 1}}`, "filter_params"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.body)
			_, err := LoadPipelineConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadPipelineConfig_TypedErrors(t *testing.T) {
	path := writeConfig(t, "run.json", `{"method": "hessian"}`)
	_, err := LoadPipelineConfig(path)
	assert.True(t, errors.Is(err, ridge.ErrUnsupportedMethod), "got %v", err)

	path = writeConfig(t, "run.json", `{"scales": [0]}`)
	_, err = LoadPipelineConfig(path)
	assert.True(t, errors.Is(err, ridge.ErrInvalidScaleRange), "got %v", err)
}

func TestLoadPipelineConfig_Missing(t *testing.T) {
	_, err := LoadPipelineConfig("/nonexistent/path/to/config.json")
	assert.Error(t, err)
}

func TestLoadPipelineConfig_TooLarge(t *testing.T) {
	body := `{"method": "frangi", "pad": "` + strings.Repeat("x", 1024*1024) + `"}`
	path := writeConfig(t, "big.json", body)
	_, err := LoadPipelineConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestLoadDefaultsFile(t *testing.T) {
	cfg, err := LoadPipelineConfig(filepath.Join("..", "..", DefaultConfigPath))
	require.NoError(t, err)

	def := DefaultPipelineConfig()
	assert.Equal(t, def.GetMethod(), cfg.GetMethod())
	assert.Equal(t, def.GetScales(), cfg.GetScales())
	assert.Equal(t, def.GetClipMax(), cfg.GetClipMax())
	assert.Equal(t, def.GetOpacity(), cfg.GetOpacity())
	assert.Equal(t, def.GetHistogramBins(), cfg.GetHistogramBins())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, EmptyPipelineConfig(), cfg)

	path := writeConfig(t, "env.json", `{"clip_max": 5}`)
	t.Setenv(EnvConfigPath, path)
	cfg, err = LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.GetClipMax())
}

func TestMerge(t *testing.T) {
	base := DefaultPipelineConfig()
	override := &PipelineConfig{
		Method:       ptrString("meijering"),
		ThreshBright: ptrFloat64(0.4),
		RenderScale:  ptrInt(3),
	}

	merged := base.Merge(override)
	assert.Equal(t, ridge.MethodMeijering, merged.GetMethod())
	assert.Equal(t, 3, merged.GetRenderScale())
	assert.Equal(t, 3.0, merged.GetClipMax())
	require.NotNil(t, merged.ThreshBright)
	assert.Equal(t, 0.4, *merged.ThreshBright)

	// The receiver is untouched.
	assert.Equal(t, ridge.MethodFrangi, base.GetMethod())
	assert.Nil(t, base.ThreshBright)

	assert.Equal(t, base, base.Merge(nil))
}
