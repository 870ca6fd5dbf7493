// Package usecases implements the application logic of the canvas MCP
// server: the JSON-RPC method dispatcher sitting between the session
// transport and the tool registry.
package usecases

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/agentcanvas/canvas-mcp-server/internal/domain"
	"github.com/agentcanvas/canvas-mcp-server/internal/domain/shared"
	"github.com/agentcanvas/canvas-mcp-server/internal/infrastructure/logging"
	"github.com/agentcanvas/canvas-mcp-server/internal/usecases/tools"
)

// ProtocolVersion is the MCP protocol revision this server speaks.
const ProtocolVersion = "2024-11-05"

// Dispatcher routes decoded JSON-RPC messages to their method
// implementations. One Dispatcher serves every session.
type Dispatcher struct {
	name         string
	version      string
	instructions string
	registry     *tools.Registry
	logger       *logging.Logger
}

// NewDispatcher creates a Dispatcher serving the given tool registry.
func NewDispatcher(name, version, instructions string, registry *tools.Registry, logger *logging.Logger) *Dispatcher {
	return &Dispatcher{
		name:         name,
		version:      version,
		instructions: instructions,
		registry:     registry,
		logger:       logger,
	}
}

// HandleMessage processes one raw JSON-RPC message and returns the response
// to send, or nil for notifications.
func (d *Dispatcher) HandleMessage(ctx context.Context, raw json.RawMessage) any {
	var req shared.JSONRPCRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return shared.NewErrorResponse(nil, shared.ParseError, shared.ErrorMessage(shared.ParseError), nil)
	}
	if req.JSONRPC != shared.JSONRPCVersion || req.Method == "" {
		return shared.NewErrorResponse(req.ID, shared.InvalidRequest, shared.ErrorMessage(shared.InvalidRequest), nil)
	}

	d.logger.Debug("dispatching method", logging.Fields{"method": req.Method, "id": req.ID})

	switch req.Method {
	case shared.MethodInitialize:
		return d.handleInitialize(req)
	case shared.MethodPing:
		return shared.NewResponse(req.ID, map[string]any{})
	case shared.MethodShutdown:
		return shared.NewResponse(req.ID, map[string]any{})
	case shared.NotificationInitialized:
		return nil
	case shared.MethodListTools:
		return shared.NewResponse(req.ID, shared.ListToolsResult{Tools: d.registry.List()})
	case shared.MethodCallTool:
		return d.handleCallTool(ctx, req)
	default:
		if req.IsNotification() {
			d.logger.Debug("ignoring unknown notification", logging.Fields{"method": req.Method})
			return nil
		}
		return shared.NewErrorResponse(req.ID, shared.MethodNotFound, shared.ErrorMessage(shared.MethodNotFound), map[string]any{
			"method": req.Method,
		})
	}
}

func (d *Dispatcher) handleInitialize(req shared.JSONRPCRequest) any {
	var params shared.InitializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return shared.NewErrorResponse(req.ID, shared.InvalidParams, shared.ErrorMessage(shared.InvalidParams), nil)
		}
	}

	d.logger.Info("client initialized", logging.Fields{
		"client":        params.ClientInfo.Name,
		"clientVersion": params.ClientInfo.Version,
	})

	return shared.NewResponse(req.ID, shared.InitializeResult{
		ProtocolVersion: ProtocolVersion,
		ServerInfo:      shared.ServerInfo{Name: d.name, Version: d.version},
		Capabilities: shared.Capabilities{
			Tools:   &shared.ToolsCapability{},
			Logging: &shared.LoggingCapability{},
		},
		Instructions: d.instructions,
	})
}

func (d *Dispatcher) handleCallTool(ctx context.Context, req shared.JSONRPCRequest) any {
	var params shared.CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return shared.NewErrorResponse(req.ID, shared.InvalidParams, shared.ErrorMessage(shared.InvalidParams), nil)
	}
	if params.Name == "" {
		return shared.NewErrorResponse(req.ID, shared.InvalidParams, "tool name is required", nil)
	}

	result, err := d.registry.Dispatch(ctx, params.Name, params.Arguments)
	if err != nil {
		code := errorCode(err)
		return shared.NewErrorResponse(req.ID, code, err.Error(), nil)
	}
	return shared.NewResponse(req.ID, result)
}

// errorCode maps a dispatch failure onto its JSON-RPC error code. The
// mapping looks through ToolExecutionError wrapping so a handler's typed
// failure keeps its own code.
func errorCode(err error) shared.ErrorCode {
	var unknownTool *domain.UnknownToolError
	var validation *domain.ValidationError
	var environment *domain.EnvironmentError
	var resolution *domain.ContentResolutionError
	var session *domain.SessionNotFoundError

	switch {
	case errors.As(err, &unknownTool):
		return shared.ToolNotFound
	case errors.As(err, &validation):
		return shared.InvalidParams
	case errors.As(err, &environment):
		return shared.HostUnavailable
	case errors.As(err, &resolution):
		return shared.ContentUnresolvable
	case errors.As(err, &session):
		return shared.SessionNotFound
	default:
		var execution *domain.ToolExecutionError
		if errors.As(err, &execution) {
			return shared.ToolExecutionFailed
		}
		return shared.InternalError
	}
}
