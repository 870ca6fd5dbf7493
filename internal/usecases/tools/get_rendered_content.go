package tools

import (
	"context"
	"fmt"

	"github.com/agentcanvas/canvas-mcp-server/internal/domain"
	"github.com/agentcanvas/canvas-mcp-server/internal/domain/shared"
	"github.com/agentcanvas/canvas-mcp-server/internal/usecases/content"
)

// GetRenderedContentTool reads back a cached render result as markdown.
type GetRenderedContentTool struct {
	cache *content.RenderCache
}

// NewGetRenderedContentTool creates the get-rendered-content tool.
func NewGetRenderedContentTool(cache *content.RenderCache) *GetRenderedContentTool {
	return &GetRenderedContentTool{cache: cache}
}

// Definition implements Handler.
func (t *GetRenderedContentTool) Definition() domain.ToolDefinition {
	return domain.ToolDefinition{
		Name:        "get-rendered-content",
		Description: "Read back previously rendered content as markdown. Returns the most recent render when no id is given.",
		Schema: domain.Schema{
			Type: "object",
			Properties: map[string]domain.Property{
				"renderId": {
					Type:        "string",
					Description: "The render to read; omit for the most recent",
				},
			},
		},
	}
}

// Execute implements Handler.
func (t *GetRenderedContentTool) Execute(ctx context.Context, args map[string]any) (*shared.CallToolResult, error) {
	var record *domain.RenderRecord
	if id := stringArg(args, "renderId"); id != "" {
		record = t.cache.Get(id)
		if record == nil {
			return nil, domain.NewValidationError("renderId", fmt.Sprintf("no render with id %s", id))
		}
	} else {
		record = t.cache.Latest()
		if record == nil {
			return shared.TextResult("Nothing has been rendered yet"), nil
		}
	}

	result := shared.TextResult(record.Markdown)
	result.Extra = map[string]any{
		"renderId": record.ID,
		"title":    record.Title,
	}
	return result, nil
}
