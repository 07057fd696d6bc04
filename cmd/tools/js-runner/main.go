// js-runner is an MCP stdio server exposing the snippet engine as a tool.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aksuhana/JS-PLAY-AROUND/internal/config"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/engine"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/history"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/logging"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/storage"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/storage/sqlite"
)

func main() {
	cfg, err := config.Load(os.Getenv("PLAYGROUND_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	// stdout carries the protocol; logs go to stderr.
	cfg.Log.Format = "json"
	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	eng, err := engine.New(engine.OptionsFromConfig(cfg.Engine), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("creating engine")
	}

	var store storage.Store
	if cfg.Storage.Enabled {
		if store, err = sqlite.Open(cfg.Storage.DBPath); err != nil {
			logger.Warn().Err(err).Msg("run history disabled")
			store = nil
		}
	}
	rec := history.NewRecorder(store, logger)
	defer rec.Close()

	s := newServer(&runner{engine: eng, history: rec})
	if err := server.ServeStdio(s); err != nil {
		logger.Error().Err(err).Msg("server error")
	}
}

type runner struct {
	engine  *engine.Engine
	history *history.Recorder
}

func newServer(r *runner) *server.MCPServer {
	s := server.NewMCPServer("playground-js-runner", "0.1.0")

	s.AddTool(mcp.Tool{
		Name: "js_run",
		Description: fmt.Sprintf("Run a JavaScript or TypeScript snippet in an isolated in-process sandbox "+
			"and return its console output. Only console, print and timers are available; "+
			"each run is limited to %s.", r.engine.Timeout()),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"language": map[string]any{
					"type":        "string",
					"description": "Snippet dialect: js or ts (default js)",
					"enum":        []string{"js", "ts"},
				},
				"code": map[string]any{
					"type":        "string",
					"description": "Source code to run",
				},
			},
			Required: []string{"code"},
		},
	}, r.handleRun)

	return s
}

func (r *runner) handleRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]any)
	if args == nil {
		return errResult("error: invalid arguments"), nil
	}

	language, _ := args["language"].(string)
	code, _ := args["code"].(string)
	if language == "" {
		language = "js"
	}

	out := r.engine.Run(ctx, engine.Request{Dialect: language, Source: code})
	r.history.Record(ctx, out, storage.OriginMCP)

	resp := out.Response()
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: resp.Text}},
		IsError: resp.Status != engine.StatusOK,
	}, nil
}

func errResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
		IsError: true,
	}
}
