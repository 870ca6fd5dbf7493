package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agentcanvas/canvas-mcp-server/internal/domain"
	"github.com/agentcanvas/canvas-mcp-server/internal/domain/shared"
)

// InjectScriptTool runs a script inside a host window.
type InjectScriptTool struct {
	host domain.WindowHost
}

// NewInjectScriptTool creates the inject-script tool.
func NewInjectScriptTool(host domain.WindowHost) *InjectScriptTool {
	return &InjectScriptTool{host: host}
}

// Definition implements Handler.
func (t *InjectScriptTool) Definition() domain.ToolDefinition {
	return domain.ToolDefinition{
		Name:        "inject-script",
		Description: "Execute JavaScript inside a previously created window and return its result.",
		Schema: domain.Schema{
			Type: "object",
			Properties: map[string]domain.Property{
				"script": {
					Type:        "string",
					Description: "JavaScript source to evaluate in the window",
				},
				"windowId": {
					Type:        "string",
					Description: "Target window; the most recent window when omitted",
				},
			},
			Required: []string{"script"},
		},
	}
}

// Execute implements Handler.
func (t *InjectScriptTool) Execute(ctx context.Context, args map[string]any) (*shared.CallToolResult, error) {
	if t.host == nil {
		return nil, domain.NewEnvironmentError("window host",
			"configure window.bridgeUrl so scripts have a window to run in")
	}

	value, err := t.host.InjectScript(ctx, domain.InjectConfig{
		WindowID: stringArg(args, "windowId"),
		Script:   stringArg(args, "script"),
	})
	if err != nil {
		return nil, err
	}

	rendered, err := json.Marshal(value)
	if err != nil {
		rendered = []byte(fmt.Sprintf("%v", value))
	}
	return shared.TextResult(string(rendered)), nil
}
