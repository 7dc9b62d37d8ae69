// Package server implements the MCP (Model Context Protocol) server for ridge
// detection on satellite rasters.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Raster Information:
//   - raster_load: Load a raster and get its metadata
//   - raster_stats: Valid-sample statistics and display percentiles
//
// Ridge Detection:
//   - ridge_detect: Thresholds and coverage of both polarities
//   - ridge_render: Composite image as base64 PNG or a file
//   - ridge_histogram: Response distributions with threshold markers
//   - ridge_lineaments: Straight segments traced through the overlays
//
// Every detection tool accepts the fields of config.PipelineConfig as
// arguments, plus an optional second band for normalized differences and an
// optional region. Omitted fields take the server defaults, which come from
// the file named by RIDGEMAP_CONFIG when it is set.
//
// # Raster Caching
//
// Decoded rasters are cached by path for the lifetime of the process, so
// repeated calls on one band only decode it once. Detection results are not
// cached.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// A request line that is not JSON gets a -32700 parse error with a null ID;
// the server keeps reading.
package server
