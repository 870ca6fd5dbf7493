package domain

import (
	"fmt"
	"strings"
)

// ValidationError indicates a malformed or missing argument. It is local to
// a single dispatch and is surfaced verbatim to the caller.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid parameter %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// UnknownToolError indicates a tool name that is not registered. The message
// carries the offending name and the list of known names so the caller can
// self-correct.
type UnknownToolError struct {
	Name  string
	Known []string
}

// Error returns the error message.
func (e *UnknownToolError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown tool: %s", e.Name)
	}
	return fmt.Sprintf("unknown tool: %s (known tools: %s)", e.Name, strings.Join(e.Known, ", "))
}

// NewUnknownToolError creates a new UnknownToolError.
func NewUnknownToolError(name string, known []string) *UnknownToolError {
	return &UnknownToolError{Name: name, Known: known}
}

// TransportError indicates a handshake, send, or close failure on a session
// transport. A fatal TransportError tears down its owning session only.
type TransportError struct {
	Op      string
	Message string
}

// Error returns the error message.
func (e *TransportError) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return fmt.Sprintf("transport %s: %s", e.Op, e.Message)
}

// NewTransportError creates a new TransportError.
func NewTransportError(op, message string) *TransportError {
	return &TransportError{Op: op, Message: message}
}

// SessionNotFoundError indicates that no session is registered for an ID.
type SessionNotFoundError struct {
	ID string
}

// Error returns the error message.
func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session with ID %s not found", e.ID)
}

// NewSessionNotFoundError creates a new SessionNotFoundError.
func NewSessionNotFoundError(id string) *SessionNotFoundError {
	return &SessionNotFoundError{ID: id}
}

// ContentResolutionError indicates that a content spec could not be turned
// into renderable HTML. Resolution aborts; no partial HTML is returned.
type ContentResolutionError struct {
	Type    ContentType
	Message string
}

// Error returns the error message.
func (e *ContentResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %s content: %s", e.Type, e.Message)
}

// NewContentResolutionError creates a new ContentResolutionError.
func NewContentResolutionError(contentType ContentType, message string) *ContentResolutionError {
	return &ContentResolutionError{Type: contentType, Message: message}
}

// ClassifierError indicates the content-type classifier failed or is
// disabled. It is recoverable: the lenient policy falls back to html
// treatment instead of failing the call.
type ClassifierError struct {
	Err error
}

// Error returns the error message.
func (e *ClassifierError) Error() string {
	return fmt.Sprintf("content classifier failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *ClassifierError) Unwrap() error {
	return e.Err
}

// NewClassifierError creates a new ClassifierError.
func NewClassifierError(err error) *ClassifierError {
	return &ClassifierError{Err: err}
}

// EnvironmentError indicates a required host collaborator is absent. The
// guidance text tells the operator how to fix the setup.
type EnvironmentError struct {
	Collaborator string
	Guidance     string
}

// Error returns the error message.
func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("%s is not available: %s", e.Collaborator, e.Guidance)
}

// NewEnvironmentError creates a new EnvironmentError.
func NewEnvironmentError(collaborator, guidance string) *EnvironmentError {
	return &EnvironmentError{Collaborator: collaborator, Guidance: guidance}
}

// ToolExecutionError wraps a failure thrown by a tool handler, attaching the
// tool name. Handler failures are never swallowed.
type ToolExecutionError struct {
	Tool string
	Err  error
}

// Error returns the error message.
func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

// Unwrap returns the underlying error.
func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}

// NewToolExecutionError creates a new ToolExecutionError.
func NewToolExecutionError(tool string, err error) *ToolExecutionError {
	return &ToolExecutionError{Tool: tool, Err: err}
}
