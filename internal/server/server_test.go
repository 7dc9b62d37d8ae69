package server

import (
	"bufio"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ironsheep/ridgemap/internal/config"
)

func TestNew_UsesBuiltInDefaults(t *testing.T) {
	s := New()
	if s.cache == nil {
		t.Fatal("raster cache not initialized")
	}
	if s.defaults == nil {
		t.Fatal("pipeline defaults not initialized")
	}
	if m := s.defaults.GetMethod(); m.String() != "frangi" {
		t.Errorf("default method: got %v, want frangi", m)
	}
}

func TestNewWithConfig_KeepsPipelineDefaults(t *testing.T) {
	cfg := config.DefaultPipelineConfig()
	s := NewWithConfig(cfg)
	if s.defaults != cfg {
		t.Error("NewWithConfig did not keep the given config")
	}
}

func TestMCPRequest_IDForms(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		wantID interface{}
	}{
		{"string id", `{"jsonrpc":"2.0","id":"detect-1","method":"tools/call"}`, "detect-1"},
		{"number id", `{"jsonrpc":"2.0","id":42,"method":"ping"}`, float64(42)},
		{"notification", `{"jsonrpc":"2.0","method":"notifications/initialized"}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			if err := json.Unmarshal([]byte(tt.line), &req); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
		})
	}
}

func TestMCPRequest_ToolArgumentsStayRaw(t *testing.T) {
	line := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"ridge_detect","arguments":{"path":"/data/B08.tif","scales":[1,2,3]}}}`

	var req MCPRequest
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		t.Fatalf("unmarshal params failed: %v", err)
	}
	if params.Name != "ridge_detect" {
		t.Errorf("tool name: got %q", params.Name)
	}
	var args detectArgs
	if err := json.Unmarshal(params.Arguments, &args); err != nil {
		t.Fatalf("unmarshal arguments failed: %v", err)
	}
	if args.Path != "/data/B08.tif" || len(args.Scales) != 3 {
		t.Errorf("arguments: got path %q scales %v", args.Path, args.Scales)
	}
}

func TestMCPResponse_OmitsEmptyFields(t *testing.T) {
	ok, _ := json.Marshal(New().resultResponse(1, map[string]interface{}{}))
	if strings.Contains(string(ok), `"error"`) {
		t.Errorf("result response carries an error field: %s", ok)
	}

	failed, _ := json.Marshal(New().errorResponse(1, codeToolFailed, "Tool execution failed", "no such band"))
	if strings.Contains(string(failed), `"result"`) {
		t.Errorf("error response carries a result field: %s", failed)
	}
	var decoded MCPResponse
	if err := json.Unmarshal(failed, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Error == nil || decoded.Error.Code != codeToolFailed || decoded.Error.Data != "no such band" {
		t.Errorf("error: got %+v", decoded.Error)
	}
}

func TestHandleRequest_Routing(t *testing.T) {
	tests := []struct {
		method   string
		wantNil  bool
		wantCode int
	}{
		{method: "initialize"},
		{method: "ping"},
		{method: "tools/list"},
		{method: "notifications/initialized", wantNil: true},
		{method: "resources/list", wantCode: codeMethodNotFound},
		{method: "tools/call", wantCode: codeInvalidParams},
	}

	s := New()
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: "req-1", Method: tt.method})
			if tt.wantNil {
				if resp != nil {
					t.Errorf("got response %+v, want none", resp)
				}
				return
			}
			if resp == nil {
				t.Fatal("no response")
			}
			if resp.ID != "req-1" || resp.JSONRPC != "2.0" {
				t.Errorf("envelope: got id %v jsonrpc %q", resp.ID, resp.JSONRPC)
			}
			switch {
			case tt.wantCode == 0 && resp.Error != nil:
				t.Errorf("unexpected error: %+v", resp.Error)
			case tt.wantCode != 0 && (resp.Error == nil || resp.Error.Code != tt.wantCode):
				t.Errorf("error: got %+v, want code %d", resp.Error, tt.wantCode)
			}
		})
	}
}

func TestHandleRequest_MethodNotFoundNamesMethod(t *testing.T) {
	resp := New().handleRequest(&MCPRequest{ID: 1, Method: "raster/delete"})
	if resp.Error == nil || resp.Error.Data != "raster/delete" {
		t.Errorf("error: got %+v, want data naming the method", resp.Error)
	}
}

func TestHandleInitialize_ServerInfo(t *testing.T) {
	resp := New().handleInitialize(&MCPRequest{ID: "init-1"})

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	if result["protocolVersion"] != protocolVersion {
		t.Errorf("protocolVersion: got %v", result["protocolVersion"])
	}
	caps, ok := result["capabilities"].(map[string]interface{})
	if !ok || caps["tools"] == nil {
		t.Errorf("capabilities: got %v, want tools", result["capabilities"])
	}
	info, ok := result["serverInfo"].(map[string]interface{})
	if !ok {
		t.Fatal("serverInfo should be a map")
	}
	if info["name"] != "ridgemap" || info["version"] != Version {
		t.Errorf("serverInfo: got %v", info)
	}
}

func TestHandleRequest_ToolsListAdvertisesSixTools(t *testing.T) {
	resp := New().handleRequest(&MCPRequest{ID: 1, Method: "tools/list"})
	result := resp.Result.(map[string]interface{})
	tools, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(tools) != 6 {
		t.Errorf("tools: got %d, want 6", len(tools))
	}
}

// serve runs lines through Serve and decodes every response line.
func serve(t *testing.T, s *Server, lines ...string) []MCPResponse {
	t.Helper()
	var out strings.Builder
	if err := s.Serve(strings.NewReader(strings.Join(lines, "\n")), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	var responses []MCPResponse
	sc := bufio.NewScanner(strings.NewReader(out.String()))
	sc.Buffer(make([]byte, 0, 64*1024), maxRequestBytes)
	for sc.Scan() {
		var resp MCPResponse
		if err := json.Unmarshal(sc.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response line %q: %v", sc.Text(), err)
		}
		responses = append(responses, resp)
	}
	return responses
}

func TestServe(t *testing.T) {
	responses := serve(t, New(),
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"raster_load","arguments":{"path":"/nonexistent/band.tif"}}}`,
	)

	// The notification and the blank line get no reply.
	if len(responses) != 3 {
		t.Fatalf("responses: got %d, want 3", len(responses))
	}
	for i, want := range []float64{1, 2, 3} {
		if responses[i].ID != want {
			t.Errorf("response %d: ID %v, want %v", i, responses[i].ID, want)
		}
	}
	if responses[2].Error == nil || responses[2].Error.Code != codeToolFailed {
		t.Errorf("missing band: got %+v, want tool failure", responses[2].Error)
	}
}

func TestServe_ParseError(t *testing.T) {
	responses := serve(t, New(),
		`not json`,
		`{"jsonrpc":"2.0","id":7,"method":"ping"}`,
	)

	if len(responses) != 2 {
		t.Fatalf("responses: got %d, want 2", len(responses))
	}
	if responses[0].ID != nil || responses[0].Error == nil || responses[0].Error.Code != codeParseError {
		t.Errorf("bad line: got id %v error %+v, want null id and parse error", responses[0].ID, responses[0].Error)
	}
	if responses[1].ID != float64(7) || responses[1].Error != nil {
		t.Errorf("ping after bad line: got %+v", responses[1])
	}
}
