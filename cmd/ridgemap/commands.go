package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ironsheep/ridgemap/internal/config"
	"github.com/ironsheep/ridgemap/internal/lineament"
	"github.com/ironsheep/ridgemap/internal/pipeline"
	"github.com/ironsheep/ridgemap/internal/raster"
	"github.com/ironsheep/ridgemap/internal/render"
	"github.com/ironsheep/ridgemap/internal/ridge"
	"github.com/ironsheep/ridgemap/internal/tiles"
)

// detectReport is printed to stdout by the detect command.
type detectReport struct {
	pipeline.Summary
	Output     string            `json:"output"`
	Histogram  string            `json:"histogram,omitempty"`
	Exported   []string          `json:"exported,omitempty"`
	Lineaments *lineamentsReport `json:"lineaments,omitempty"`
}

type lineamentsReport struct {
	Bright *lineament.Result `json:"bright"`
	Dark   *lineament.Result `json:"dark"`
}

func runDetect(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	configPath := fs.String("config", "", "pipeline config JSON (default $"+config.EnvConfigPath+")")
	output := fs.String("o", "composite.png", "composite image to write (.png, .jpg, .tif, .bmp, .gif)")
	histogram := fs.String("histogram", "", "also write a response histogram (.png, .svg, .pdf)")
	second := fs.String("nd", "", "second band; detect on the normalized difference (band - nd) / (band + nd)")
	method := fs.String("method", "", "ridge filter: frangi or meijering (overrides config)")
	scale := fs.Int("scale", 0, "integer upscale of the composite (overrides config)")
	exportDir := fs.String("export", "", "directory for 16-bit TIFF exports of both normalised responses")
	lines := fs.Bool("lineaments", false, "include Hough lineaments of both overlays in the report")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: ridgemap detect [flags] <band>")
		fs.PrintDefaults()
	}
	bands, err := parseInterleaved(fs, args)
	if err != nil {
		return err
	}
	if len(bands) != 1 {
		fs.Usage()
		return fmt.Errorf("expected exactly one band path, got %d", len(bands))
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	override := config.EmptyPipelineConfig()
	if *method != "" {
		override.Method = method
	}
	if *scale != 0 {
		override.RenderScale = scale
	}
	cfg = cfg.Merge(override)

	res, err := pipeline.RunFile(nil, bands[0], *second, cfg)
	if err != nil {
		return err
	}

	img, err := res.Render()
	if err != nil {
		return err
	}
	if err := render.Save(img, *output); err != nil {
		return err
	}
	report := detectReport{Summary: res.Summary(), Output: *output}

	if *histogram != "" {
		p, err := res.Histogram()
		if err != nil {
			return err
		}
		if err := render.SaveHistogram(p, *histogram); err != nil {
			return err
		}
		report.Histogram = *histogram
	}

	if *exportDir != "" {
		if report.Exported, err = exportResponses(res, *exportDir); err != nil {
			return err
		}
	}

	if *lines {
		report.Lineaments = &lineamentsReport{}
		if report.Lineaments.Bright, err = res.Lineaments(ridge.Bright, 0); err != nil {
			return err
		}
		if report.Lineaments.Dark, err = res.Lineaments(ridge.Dark, 0); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// parseInterleaved parses args with fs, accepting flags both before and
// after positional arguments. It returns the positional arguments in order.
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// loadConfig reads path, or the file named by RIDGEMAP_CONFIG when path is
// empty, or falls back to the built-in defaults.
func loadConfig(path string) (*config.PipelineConfig, error) {
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.LoadPipelineConfig(path)
}

// exportResponses writes both normalised responses as 16-bit TIFFs spanning
// [0, 1].
func exportResponses(res *pipeline.Result, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	paths := make([]string, 0, 2)
	for _, p := range []ridge.Polarity{ridge.Bright, ridge.Dark} {
		path := filepath.Join(dir, fmt.Sprintf("%s_response.tif", p))
		if err := raster.SaveTIFF(path, res.Overlay(p).Response, 0, 1); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func runDownload(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("download", flag.ContinueOnError)
	baseURL := fs.String("url", tiles.DefaultBaseURL, "tile base URL")
	timeout := fs.Duration("timeout", 30*time.Minute, "overall download timeout")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: ridgemap download [flags] [dir]")
		fs.PrintDefaults()
	}
	rest, err := parseInterleaved(fs, args)
	if err != nil {
		return err
	}
	dir := "data"
	if len(rest) > 0 {
		dir = rest[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	d := tiles.NewDownloader()
	d.BaseURL = *baseURL
	files, err := d.Download(ctx, dir)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(files); encErr != nil && err == nil {
		err = encErr
	}
	return err
}
