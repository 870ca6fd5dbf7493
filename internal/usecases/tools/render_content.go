package tools

import (
	"context"
	"fmt"

	"github.com/agentcanvas/canvas-mcp-server/internal/domain"
	"github.com/agentcanvas/canvas-mcp-server/internal/domain/shared"
	"github.com/agentcanvas/canvas-mcp-server/internal/infrastructure/logging"
	"github.com/agentcanvas/canvas-mcp-server/internal/usecases/content"
)

const (
	defaultWindowWidth  = 800
	defaultWindowHeight = 600
)

// RenderContentTool resolves a content spec and realizes it in a host
// window.
type RenderContentTool struct {
	resolver *content.Resolver
	cache    *content.RenderCache
	host     domain.WindowHost
	logger   *logging.Logger
}

// NewRenderContentTool creates the render-content tool. host may be nil
// when the server runs without a display collaborator; calls then fail with
// setup guidance.
func NewRenderContentTool(resolver *content.Resolver, cache *content.RenderCache, host domain.WindowHost, logger *logging.Logger) *RenderContentTool {
	return &RenderContentTool{resolver: resolver, cache: cache, host: host, logger: logger}
}

// Definition implements Handler.
func (t *RenderContentTool) Definition() domain.ToolDefinition {
	return domain.ToolDefinition{
		Name:        "render-content",
		Description: "Render content in a window on the host display. Accepts HTML, markdown, a URL or file path, an image reference, or auto-detected content.",
		Schema: domain.Schema{
			Type: "object",
			Properties: map[string]domain.Property{
				"type": {
					Type:        "string",
					Description: "How to interpret the content",
					Enum:        []string{"html", "url", "markdown", "image", "auto"},
				},
				"content": {
					Type:        "string",
					Description: "The content payload: markup, text, a URL, or a file path",
				},
				"title": {
					Type:        "string",
					Description: "Window title",
				},
				"width": {
					Type:        "number",
					Description: "Window width in pixels",
					Default:     defaultWindowWidth,
				},
				"height": {
					Type:        "number",
					Description: "Window height in pixels",
					Default:     defaultWindowHeight,
				},
			},
			Required: []string{"type", "content"},
		},
	}
}

// Execute implements Handler.
func (t *RenderContentTool) Execute(ctx context.Context, args map[string]any) (*shared.CallToolResult, error) {
	if t.host == nil {
		return nil, domain.NewEnvironmentError("window host",
			"configure window.bridgeUrl so rendered content has somewhere to go")
	}

	spec := domain.ContentSpec{
		Type:    domain.ContentType(stringArg(args, "type")),
		Content: stringArg(args, "content"),
	}

	resolved, err := t.resolver.Resolve(ctx, spec)
	if err != nil {
		return nil, err
	}

	title := stringArg(args, "title")
	if title == "" {
		title = "Canvas"
	}

	config := domain.WindowConfig{
		Title:     title,
		Width:     intArg(args, "width", defaultWindowWidth),
		Height:    intArg(args, "height", defaultWindowHeight),
		Resizable: true,
	}
	if resolved.IsDirectURL() {
		config.URL = resolved.DirectURL
	} else {
		config.HTML = resolved.HTML
	}

	handle, err := t.host.CreateWindow(ctx, config)
	if err != nil {
		return nil, err
	}

	t.logger.Info("content rendered", logging.Fields{
		"windowId": handle.ID,
		"type":     string(resolved.Type),
		"subType":  resolved.SubType,
	})

	if resolved.IsDirectURL() {
		result := shared.TextResult(fmt.Sprintf("Opened %s in window %s", resolved.DirectURL, handle.ID))
		result.Extra = map[string]any{"windowId": handle.ID, "directUrl": resolved.DirectURL}
		return result, nil
	}

	record := t.cache.Put(title, resolved.HTML)
	result := shared.TextResult(fmt.Sprintf("Rendered %s content in window %s (render id %s)", resolved.Type, handle.ID, record.ID))
	result.Extra = map[string]any{"windowId": handle.ID, "renderId": record.ID}
	return result, nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// intArg reads a numeric argument, tolerating the float64 that JSON
// decoding produces.
func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}
