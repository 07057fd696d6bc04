package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aksuhana/JS-PLAY-AROUND/internal/engine"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/history"
)

func testRunner(t *testing.T) *runner {
	t.Helper()
	opts := engine.DefaultOptions()
	opts.Timeout = 200 * time.Millisecond
	eng, err := engine.New(opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	return &runner{engine: eng, history: history.NewRecorder(nil, nil)}
}

func call(t *testing.T, r *runner, args any) *mcp.CallToolResult {
	t.Helper()
	res, err := r.handleRun(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: "js_run", Arguments: args},
	})
	if err != nil {
		t.Fatalf("handleRun: %v", err)
	}
	return res
}

func text(res *mcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func TestJSRun(t *testing.T) {
	r := testRunner(t)

	tests := []struct {
		name    string
		args    map[string]any
		text    string
		isError bool
	}{
		{"js", map[string]any{"code": "console.log('hi')"}, "hi", false},
		{"ts", map[string]any{"language": "ts", "code": "const x: number = 4; print(x)"}, "4", false},
		{"empty", map[string]any{"code": ""}, engine.NoOutput, false},
		{"throw", map[string]any{"code": "throw new Error('boom')"}, "Error: boom", true},
		{"timeout", map[string]any{"code": "for(;;){}"}, "Error: Script execution timed out after 200ms", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, r, tt.args)
			if res.IsError != tt.isError {
				t.Errorf("IsError = %v, want %v", res.IsError, tt.isError)
			}
			if got := text(res); !strings.HasPrefix(got, tt.text) {
				t.Errorf("text = %q, want prefix %q", got, tt.text)
			}
		})
	}
}

func TestJSRunInvalidArguments(t *testing.T) {
	res := call(t, testRunner(t), "not an object")
	if !res.IsError || !strings.Contains(text(res), "invalid arguments") {
		t.Errorf("result = %+v", res)
	}
}

func TestServerListsTool(t *testing.T) {
	s := newServer(testRunner(t))

	resp := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"js_run"`) {
		t.Errorf("tools/list = %s", data)
	}
}
