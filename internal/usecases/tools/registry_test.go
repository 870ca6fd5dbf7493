package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentcanvas/canvas-mcp-server/internal/domain"
	"github.com/agentcanvas/canvas-mcp-server/internal/domain/shared"
	"github.com/agentcanvas/canvas-mcp-server/internal/infrastructure/logging"
)

// stubTool is a configurable Handler for registry tests.
type stubTool struct {
	name      string
	required  []string
	execute   func(ctx context.Context, args map[string]any) (*shared.CallToolResult, error)
	initErr   error
	cleanErr  error
	initCalls int
	cleanups  int
}

func (s *stubTool) Definition() domain.ToolDefinition {
	props := map[string]domain.Property{}
	for _, name := range s.required {
		props[name] = domain.Property{Type: "string"}
	}
	return domain.ToolDefinition{
		Name:   s.name,
		Schema: domain.Schema{Type: "object", Properties: props, Required: s.required},
	}
}

func (s *stubTool) Execute(ctx context.Context, args map[string]any) (*shared.CallToolResult, error) {
	if s.execute != nil {
		return s.execute(ctx, args)
	}
	return shared.TextResult("ok"), nil
}

func (s *stubTool) Initialize(ctx context.Context) error {
	s.initCalls++
	return s.initErr
}

func (s *stubTool) Cleanup(ctx context.Context) error {
	s.cleanups++
	return s.cleanErr
}

func newTestRegistry() *Registry {
	return NewRegistry(5*time.Second, logging.NewNop())
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	r := newTestRegistry()

	err := r.Register(&stubTool{name: ""})

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestRegisterDuplicateOverwrites(t *testing.T) {
	r := newTestRegistry()
	second := &stubTool{name: "echo", execute: func(ctx context.Context, args map[string]any) (*shared.CallToolResult, error) {
		return shared.TextResult("second"), nil
	}}

	require.NoError(t, r.Register(&stubTool{name: "echo"}))
	require.NoError(t, r.Register(second))

	result, err := r.Dispatch(context.Background(), "echo", nil)
	require.NoError(t, err)
	text := result.Content[0].(shared.TextContent)
	assert.Equal(t, "second", text.Text)
	assert.Equal(t, []string{"echo"}, r.Names())
}

func TestDispatchUnknownToolNamesKnownTools(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Register(&stubTool{name: "alpha"}))
	require.NoError(t, r.Register(&stubTool{name: "beta"}))

	_, err := r.Dispatch(context.Background(), "gamma", nil)

	var unknownErr *domain.UnknownToolError
	require.ErrorAs(t, err, &unknownErr)
	assert.Contains(t, err.Error(), "gamma")
	assert.Contains(t, err.Error(), "alpha")
	assert.Contains(t, err.Error(), "beta")
}

func TestDispatchValidatesRequired(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Register(&stubTool{name: "greet", required: []string{"name"}}))

	_, err := r.Dispatch(context.Background(), "greet", map[string]any{})
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, err.Error(), "name")

	_, err = r.Dispatch(context.Background(), "greet", map[string]any{"name": ""})
	require.ErrorAs(t, err, &validationErr)

	_, err = r.Dispatch(context.Background(), "greet", map[string]any{"name": 42})
	require.ErrorAs(t, err, &validationErr)

	_, err = r.Dispatch(context.Background(), "greet", map[string]any{"name": "world"})
	require.NoError(t, err)
}

func TestDispatchWrapsHandlerFailure(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Register(&stubTool{
		name: "boom",
		execute: func(ctx context.Context, args map[string]any) (*shared.CallToolResult, error) {
			return nil, errors.New("kaput")
		},
	}))

	_, err := r.Dispatch(context.Background(), "boom", nil)

	var execErr *domain.ToolExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "boom", execErr.Tool)
	assert.Contains(t, err.Error(), "kaput")
}

func TestDispatchAppliesTimeout(t *testing.T) {
	r := NewRegistry(10*time.Millisecond, logging.NewNop())
	require.NoError(t, r.Register(&stubTool{
		name: "slow",
		execute: func(ctx context.Context, args map[string]any) (*shared.CallToolResult, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(5 * time.Second):
				return shared.TextResult("too late"), nil
			}
		},
	}))

	_, err := r.Dispatch(context.Background(), "slow", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestListPreservesRegistrationOrder(t *testing.T) {
	r := newTestRegistry()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, r.Register(&stubTool{name: name}))
	}

	listed := r.List()
	require.Len(t, listed, 3)
	assert.Equal(t, "c", listed[0].Name)
	assert.Equal(t, "a", listed[1].Name)
	assert.Equal(t, "b", listed[2].Name)
}

func TestInitializeAllFailsFast(t *testing.T) {
	r := newTestRegistry()
	failing := &stubTool{name: "first", initErr: errors.New("no backing store")}
	skipped := &stubTool{name: "second"}
	require.NoError(t, r.Register(failing))
	require.NoError(t, r.Register(skipped))

	err := r.InitializeAll(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, failing.initCalls)
	assert.Zero(t, skipped.initCalls)
}

func TestCleanupAllCollectsFailures(t *testing.T) {
	r := newTestRegistry()
	failing := &stubTool{name: "first", cleanErr: errors.New("leak")}
	after := &stubTool{name: "second"}
	require.NoError(t, r.Register(failing))
	require.NoError(t, r.Register(after))

	err := r.CleanupAll(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "leak")
	assert.Equal(t, 1, after.cleanups)
}
