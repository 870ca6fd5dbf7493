package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/agentcanvas/canvas-mcp-server/internal/domain"
	"github.com/agentcanvas/canvas-mcp-server/internal/domain/shared"
	"github.com/agentcanvas/canvas-mcp-server/internal/usecases/notify"
)

// StartNotificationStreamTool runs a timed notification stream against the
// calling session and returns its summary when the stream finishes.
type StartNotificationStreamTool struct {
	scheduler *notify.Scheduler
	directory domain.SessionDirectory
}

// NewStartNotificationStreamTool creates the start-notification-stream tool.
func NewStartNotificationStreamTool(scheduler *notify.Scheduler, directory domain.SessionDirectory) *StartNotificationStreamTool {
	return &StartNotificationStreamTool{scheduler: scheduler, directory: directory}
}

// Definition implements Handler.
func (t *StartNotificationStreamTool) Definition() domain.ToolDefinition {
	return domain.ToolDefinition{
		Name:        "start-notification-stream",
		Description: "Push a series of timed notifications to the calling session. Blocks until the stream completes or is cancelled.",
		Schema: domain.Schema{
			Type: "object",
			Properties: map[string]domain.Property{
				"intervalMs": {
					Type:        "number",
					Description: "Milliseconds between notifications",
				},
				"count": {
					Type:        "number",
					Description: "Number of notifications to send",
				},
				"message": {
					Type:        "string",
					Description: "Message template; {counter}, {timestamp}, and {level} are substituted",
				},
				"level": {
					Type:        "string",
					Description: "Notification severity",
					Enum:        []string{"debug", "info", "warning", "error"},
					Default:     "info",
				},
			},
			Required: []string{"intervalMs", "count"},
		},
	}
}

// Execute implements Handler.
func (t *StartNotificationStreamTool) Execute(ctx context.Context, args map[string]any) (*shared.CallToolResult, error) {
	sessionID, ok := domain.SessionIDFromContext(ctx)
	if !ok {
		return nil, domain.NewValidationError("sessionId", "no session associated with this call")
	}

	sender, err := t.directory.Sender(sessionID)
	if err != nil {
		return nil, err
	}

	params := notify.Params{
		Interval: time.Duration(intArg(args, "intervalMs", 0)) * time.Millisecond,
		Count:    intArg(args, "count", 0),
		Template: stringArg(args, "message"),
		Level:    domain.NotificationLevel(stringArg(args, "level")),
	}

	summary, err := t.scheduler.Run(ctx, sender, sessionID, params)
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("Sent %d of %d notifications", summary.TotalSent, params.Count)
	if summary.Cancelled {
		text += " (cancelled)"
	}
	result := shared.TextResult(text)
	result.Extra = map[string]any{
		"jobId":     summary.JobID,
		"totalSent": summary.TotalSent,
		"cancelled": summary.Cancelled,
		"results":   summary.Results,
	}
	return result, nil
}

// CancelNotificationStreamTool cancels one running stream by job ID, or all
// of them.
type CancelNotificationStreamTool struct {
	scheduler *notify.Scheduler
}

// NewCancelNotificationStreamTool creates the cancel-notification-stream
// tool.
func NewCancelNotificationStreamTool(scheduler *notify.Scheduler) *CancelNotificationStreamTool {
	return &CancelNotificationStreamTool{scheduler: scheduler}
}

// Definition implements Handler.
func (t *CancelNotificationStreamTool) Definition() domain.ToolDefinition {
	return domain.ToolDefinition{
		Name:        "cancel-notification-stream",
		Description: "Cancel a running notification stream by job id, or every running stream when no id is given.",
		Schema: domain.Schema{
			Type: "object",
			Properties: map[string]domain.Property{
				"jobId": {
					Type:        "string",
					Description: "The stream to cancel; omit to cancel all",
				},
			},
		},
	}
}

// Execute implements Handler.
func (t *CancelNotificationStreamTool) Execute(ctx context.Context, args map[string]any) (*shared.CallToolResult, error) {
	jobID := stringArg(args, "jobId")
	if jobID == "" {
		n := t.scheduler.CancelAll()
		return shared.TextResult(fmt.Sprintf("Cancelled %d notification streams", n)), nil
	}

	if !t.scheduler.Cancel(jobID) {
		return shared.TextResult(fmt.Sprintf("No running stream with job id %s", jobID)), nil
	}
	return shared.TextResult(fmt.Sprintf("Cancelled notification stream %s", jobID)), nil
}
