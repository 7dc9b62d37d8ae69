package server

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/ironsheep/ridgemap/internal/config"
	"github.com/ironsheep/ridgemap/internal/lineament"
	"github.com/ironsheep/ridgemap/internal/pipeline"
	"github.com/ironsheep/ridgemap/internal/raster"
	"github.com/ironsheep/ridgemap/internal/render"
	"github.com/ironsheep/ridgemap/internal/ridge"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "raster_load", "ridge_detect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		log.Printf("Tool %s failed: %v", params.Name, err)
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return s.resultResponse(req.ID, map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": mustMarshalJSON(result),
			},
		},
	})
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Raster Information
	case "raster_load":
		return s.handleRasterLoad(args)
	case "raster_stats":
		return s.handleRasterStats(args)

	// Ridge Detection
	case "ridge_detect":
		return s.handleRidgeDetect(args)
	case "ridge_render":
		return s.handleRidgeRender(args)
	case "ridge_histogram":
		return s.handleRidgeHistogram(args)
	case "ridge_lineaments":
		return s.handleRidgeLineaments(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Raster Information Handlers ===

type rasterLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleRasterLoad(args json.RawMessage) (interface{}, error) {
	var a rasterLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return raster.LoadInfo(s.cache, a.Path)
}

type rasterStatsArgs struct {
	Path   string         `json:"path"`
	Region *raster.Region `json:"region"`
	Nodata *float64       `json:"nodata"`
}

func (s *Server) handleRasterStats(args json.RawMessage) (interface{}, error) {
	var a rasterStatsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	r, err := s.loadRegion(a.Path, a.Region)
	if err != nil {
		return nil, err
	}
	nodata := a.Nodata
	if nodata == nil {
		nodata = s.defaults.Nodata
	}
	return raster.ComputeStats(r, nodata)
}

// loadRegion returns the cached raster at path, cropped to region when one
// is given.
func (s *Server) loadRegion(path string, region *raster.Region) (*raster.Raster, error) {
	r, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	if region == nil {
		return r, nil
	}
	return raster.Crop(r, *region)
}

// === Ridge Detection Handlers ===

// detectArgs are the arguments shared by every detection tool. Pipeline
// options are read straight into an embedded config and laid over the
// server defaults.
type detectArgs struct {
	Path       string         `json:"path"`
	SecondPath string         `json:"second_path"`
	Region     *raster.Region `json:"region"`
	OutputPath string         `json:"output_path"`

	config.PipelineConfig
}

func (s *Server) detect(args json.RawMessage) (*detectArgs, *pipeline.Result, error) {
	var a detectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, nil, err
	}
	if a.Path == "" {
		return nil, nil, fmt.Errorf("path is required")
	}
	cfg := s.defaults.Merge(&a.PipelineConfig)
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid options: %w", err)
	}

	band, err := s.loadRegion(a.Path, a.Region)
	if err != nil {
		return nil, nil, err
	}
	var second *raster.Raster
	if a.SecondPath != "" {
		if second, err = s.loadRegion(a.SecondPath, a.Region); err != nil {
			return nil, nil, err
		}
	}

	data, err := pipeline.Derive(band, second, cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := pipeline.Run(data, cfg)
	if err != nil {
		return nil, nil, err
	}
	return &a, res, nil
}

func (s *Server) handleRidgeDetect(args json.RawMessage) (interface{}, error) {
	_, res, err := s.detect(args)
	if err != nil {
		return nil, err
	}
	return res.Summary(), nil
}

// ImageOutput is returned by the rendering tools.
type ImageOutput struct {
	Summary pipeline.Summary `json:"summary"`

	// Exactly one of Image and OutputPath is set.
	Image      *render.Result `json:"image,omitempty"`
	OutputPath string         `json:"output_path,omitempty"`
}

func (s *Server) handleRidgeRender(args json.RawMessage) (interface{}, error) {
	a, res, err := s.detect(args)
	if err != nil {
		return nil, err
	}
	img, err := res.Render()
	if err != nil {
		return nil, err
	}

	out := &ImageOutput{Summary: res.Summary()}
	if a.OutputPath != "" {
		if err := render.Save(img, a.OutputPath); err != nil {
			return nil, err
		}
		out.OutputPath = a.OutputPath
		return out, nil
	}
	if out.Image, err = render.EncodePNG(img); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Server) handleRidgeHistogram(args json.RawMessage) (interface{}, error) {
	a, res, err := s.detect(args)
	if err != nil {
		return nil, err
	}
	p, err := res.Histogram()
	if err != nil {
		return nil, err
	}

	out := &ImageOutput{Summary: res.Summary()}
	if a.OutputPath != "" {
		if err := render.SaveHistogram(p, a.OutputPath); err != nil {
			return nil, err
		}
		out.OutputPath = a.OutputPath
		return out, nil
	}
	if out.Image, err = render.EncodeHistogramPNG(p); err != nil {
		return nil, err
	}
	return out, nil
}

type lineamentArgs struct {
	Polarity          string `json:"polarity"`
	IncludeComponents bool   `json:"include_components"`
}

// PolarityLineaments holds the extraction for one overlay.
type PolarityLineaments struct {
	*lineament.Result
	Components []lineament.Component `json:"components,omitempty"`
}

// LineamentOutput is returned by ridge_lineaments.
type LineamentOutput struct {
	Summary pipeline.Summary    `json:"summary"`
	Bright  *PolarityLineaments `json:"bright,omitempty"`
	Dark    *PolarityLineaments `json:"dark,omitempty"`
}

func parsePolarities(s string) ([]ridge.Polarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both":
		return []ridge.Polarity{ridge.Bright, ridge.Dark}, nil
	case "bright":
		return []ridge.Polarity{ridge.Bright}, nil
	case "dark":
		return []ridge.Polarity{ridge.Dark}, nil
	default:
		return nil, fmt.Errorf("unknown polarity %q (want bright, dark or both)", s)
	}
}

func (s *Server) handleRidgeLineaments(args json.RawMessage) (interface{}, error) {
	var la lineamentArgs
	if err := json.Unmarshal(args, &la); err != nil {
		return nil, err
	}
	polarities, err := parsePolarities(la.Polarity)
	if err != nil {
		return nil, err
	}

	_, res, err := s.detect(args)
	if err != nil {
		return nil, err
	}

	out := &LineamentOutput{Summary: res.Summary()}
	minLength := res.Config.GetMinLineLength()
	c := res.Composite
	for _, p := range polarities {
		lines, err := res.Lineaments(p, minLength)
		if err != nil {
			return nil, err
		}
		pl := &PolarityLineaments{Result: lines}
		if la.IncludeComponents {
			if pl.Components, err = lineament.Components(res.Overlay(p).Mask, c.Width, c.Height, minLength); err != nil {
				return nil, err
			}
		}
		if p == ridge.Dark {
			out.Dark = pl
		} else {
			out.Bright = pl
		}
	}
	return out, nil
}
