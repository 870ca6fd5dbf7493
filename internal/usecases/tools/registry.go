// Package tools implements the tool registry, dispatch pipeline, and the
// built-in canvas tools.
package tools

import (
	"context"
	"time"

	"go.uber.org/multierr"

	"github.com/agentcanvas/canvas-mcp-server/internal/domain"
	"github.com/agentcanvas/canvas-mcp-server/internal/domain/shared"
	"github.com/agentcanvas/canvas-mcp-server/internal/infrastructure/logging"
)

// Handler executes one named tool. Definition must return the same record
// for the life of the handler.
type Handler interface {
	Definition() domain.ToolDefinition
	Execute(ctx context.Context, args map[string]any) (*shared.CallToolResult, error)
}

// Initializer is implemented by handlers that need setup before serving.
type Initializer interface {
	Initialize(ctx context.Context) error
}

// Cleaner is implemented by handlers that hold resources to release at
// shutdown.
type Cleaner interface {
	Cleanup(ctx context.Context) error
}

// Registry holds the registered tools and dispatches calls to them. The set
// is fixed at startup; registration is not safe for use concurrently with
// dispatch.
type Registry struct {
	handlers        map[string]Handler
	order           []string
	dispatchTimeout time.Duration
	logger          *logging.Logger
}

// NewRegistry creates an empty Registry. Each dispatched call is bounded by
// dispatchTimeout.
func NewRegistry(dispatchTimeout time.Duration, logger *logging.Logger) *Registry {
	return &Registry{
		handlers:        make(map[string]Handler),
		dispatchTimeout: dispatchTimeout,
		logger:          logger,
	}
}

// Register adds a handler under its definition name. Registering an existing
// name overwrites the previous handler with a warning.
func (r *Registry) Register(handler Handler) error {
	name := handler.Definition().Name
	if name == "" {
		return domain.NewValidationError("name", "tool name cannot be empty")
	}

	if _, exists := r.handlers[name]; exists {
		r.logger.Warn("overwriting registered tool", logging.Fields{"tool": name})
	} else {
		r.order = append(r.order, name)
	}
	r.handlers[name] = handler
	return nil
}

// List returns the wire definitions of every registered tool, in
// registration order.
func (r *Registry) List() []shared.Tool {
	out := make([]shared.Tool, 0, len(r.order))
	for _, name := range r.order {
		def := r.handlers[name].Definition()
		out = append(out, shared.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.Schema,
		})
	}
	return out
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Dispatch validates args against the tool's schema and executes the
// handler under the dispatch timeout. Handler failures come back wrapped in
// a ToolExecutionError.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (*shared.CallToolResult, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return nil, domain.NewUnknownToolError(name, r.Names())
	}

	def := handler.Definition()
	if err := validateRequired(def.Schema, args); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.dispatchTimeout)
	defer cancel()

	start := time.Now()
	result, err := handler.Execute(ctx, args)
	r.logger.Debug("tool dispatched", logging.Fields{
		"tool":       name,
		"durationMs": time.Since(start).Milliseconds(),
		"failed":     err != nil,
	})
	if err != nil {
		return nil, domain.NewToolExecutionError(name, err)
	}
	return result, nil
}

// InitializeAll runs every handler's initializer, failing fast on the first
// error.
func (r *Registry) InitializeAll(ctx context.Context) error {
	for _, name := range r.order {
		init, ok := r.handlers[name].(Initializer)
		if !ok {
			continue
		}
		if err := init.Initialize(ctx); err != nil {
			return domain.NewToolExecutionError(name, err)
		}
	}
	return nil
}

// CleanupAll runs every handler's cleanup, collecting all failures instead
// of stopping at the first.
func (r *Registry) CleanupAll(ctx context.Context) error {
	var errs error
	for _, name := range r.order {
		cleaner, ok := r.handlers[name].(Cleaner)
		if !ok {
			continue
		}
		if err := cleaner.Cleanup(ctx); err != nil {
			errs = multierr.Append(errs, domain.NewToolExecutionError(name, err))
		}
	}
	return errs
}

// validateRequired enforces the schema's required list: each named argument
// must be present and, for string properties, non-empty.
func validateRequired(schema domain.Schema, args map[string]any) error {
	for _, field := range schema.Required {
		value, ok := args[field]
		if !ok || value == nil {
			return domain.NewValidationError(field, "required argument is missing")
		}
		if prop, ok := schema.Properties[field]; ok && prop.Type == "string" {
			str, ok := value.(string)
			if !ok {
				return domain.NewValidationError(field, "must be a string")
			}
			if str == "" {
				return domain.NewValidationError(field, "cannot be empty")
			}
		}
	}
	return nil
}
