package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to a single-band raster (PNG, JPEG, GIF, BMP or TIFF; 16-bit grey keeps full precision)",
	}
}

func regionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Optional window to process; x2/y2 are exclusive",
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer"},
			"y1": map[string]interface{}{"type": "integer"},
			"x2": map[string]interface{}{"type": "integer"},
			"y2": map[string]interface{}{"type": "integer"},
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

// detectionProperties returns the arguments shared by every tool that runs
// the detection pipeline. Omitted options fall back to the server defaults.
func detectionProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty(),
		"second_path": map[string]interface{}{
			"type":        "string",
			"description": "Optional second band; when given the detector runs on (path - second_path) / (path + second_path), e.g. B08 and B04 for NDVI",
		},
		"region": regionProperty(),
		"gain": map[string]interface{}{
			"type":        "number",
			"description": "Multiplier applied to raw samples (1e-4 turns Sentinel-2 L2A digital numbers into reflectance). Default 1",
		},
		"offset": map[string]interface{}{
			"type":        "number",
			"description": "Added after gain. Default 0",
		},
		"standardize": map[string]interface{}{
			"type":        "boolean",
			"description": "Convert the derived band to z-scores before detection. Default false",
		},
		"nodata": map[string]interface{}{
			"type":        "number",
			"description": "Sentinel value marking missing samples (NaN is always missing)",
		},
		"method": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"frangi", "meijering"},
			"description": "Ridge filter. Default frangi",
		},
		"scales": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "number"},
			"description": "Strictly increasing Gaussian sigmas in samples. Default [2, 4, 6]",
		},
		"clip_max": map[string]interface{}{
			"type":        "number",
			"description": "Upper clip applied before filtering. Default 3.0",
		},
		"filter_params": map[string]interface{}{
			"type":        "object",
			"description": "Extra filter parameters: alpha, beta, gamma for frangi; alpha for meijering",
		},
		"thresh_bright": map[string]interface{}{
			"type":        "number",
			"description": "Manual bright threshold in [0, 1]; overrides percentiles",
		},
		"thresh_dark": map[string]interface{}{
			"type":        "number",
			"description": "Manual dark threshold in [0, 1]; overrides percentiles",
		},
		"percentiles": map[string]interface{}{
			"type":        "object",
			"description": "Percentile (0-100) per polarity used when no manual threshold is set. Default 95 for both",
			"properties": map[string]interface{}{
				"bright": map[string]interface{}{"type": "number"},
				"dark":   map[string]interface{}{"type": "number"},
			},
		},
	}
}

func withProperties(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Raster Information
		{
			Name:        "raster_load",
			Description: "Load a raster file and return its dimensions, format and bit depth. The raster is cached for subsequent calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "raster_stats",
			Description: "Summarise the valid samples of a raster: count, min, max, mean, standard deviation, median and the 2nd/98th percentiles used for display stretching.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"region": regionProperty(),
					"nodata": map[string]interface{}{
						"type":        "number",
						"description": "Sentinel value marking missing samples",
					},
				},
				"required": []string{"path"},
			},
		},

		// Ridge Detection
		{
			Name:        "ridge_detect",
			Description: "Run the multi-scale ridge filter in both polarities and report the resolved bright/dark thresholds, the fraction of the raster each overlay keeps and the background display range.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": detectionProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "ridge_render",
			Description: "Run detection and render the composite: background in grey, bright ridges on a red ramp, dark ridges on a blue ramp. Returns base64 PNG, or writes the file when output_path is given.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(detectionProperties(), map[string]interface{}{
					"opacity": map[string]interface{}{
						"type":        "number",
						"description": "Overlay opacity in (0, 1]. Default 0.7",
					},
					"render_scale": map[string]interface{}{
						"type":        "integer",
						"description": "Integer upscale factor (nearest neighbour). Default 1",
					},
					"grid_spacing": map[string]interface{}{
						"type":        "integer",
						"description": "Draw a labelled coordinate grid every N raster cells. Default 0 (off)",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional file to write (.png, .jpg, .tif, .bmp, .gif)",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "ridge_histogram",
			Description: "Run detection and plot the bright and dark response distributions with their thresholds marked. Returns base64 PNG, or writes the file when output_path is given.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(detectionProperties(), map[string]interface{}{
					"histogram_bins": map[string]interface{}{
						"type":        "integer",
						"description": "Number of bins. Default 50",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional file to write (.png, .svg, .pdf)",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "ridge_lineaments",
			Description: "Run detection and extract straight lineaments from the thresholded overlays by Hough transform. Returns segment endpoints, lengths and orientations (degrees from +X, y down).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(detectionProperties(), map[string]interface{}{
					"polarity": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"bright", "dark", "both"},
						"description": "Which overlay to trace. Default both",
					},
					"min_line_length": map[string]interface{}{
						"type":        "integer",
						"description": "Shortest segment reported, in cells. Default 20",
					},
					"include_components": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return 8-connected components of the overlay with size at least min_line_length",
					},
				}),
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return s.resultResponse(req.ID, map[string]interface{}{
		"tools": GetToolDefinitions(),
	})
}
