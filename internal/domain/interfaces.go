package domain

import "context"

// WindowHost is the external collaborator that realizes resolved content on
// the host rendering surface. It is injected at construction time; a missing
// host surfaces as an EnvironmentError, never a silent no-op.
type WindowHost interface {
	// CreateWindow displays resolved content in a host window.
	CreateWindow(ctx context.Context, config WindowConfig) (*WindowHandle, error)

	// InjectScript runs a script inside an existing host window.
	InjectScript(ctx context.Context, config InjectConfig) (any, error)
}

// Classifier decides the concrete content type for a spec submitted as
// "auto". Implementations may call out to an LLM.
type Classifier interface {
	// Classify returns one of the concrete content types for the given
	// content sample.
	Classify(ctx context.Context, content string) (ContentType, error)
}

// PushSender is the outbound half of a session: a framed push channel the
// notification scheduler and dispatcher write to.
type PushSender interface {
	// Send frames and queues one message on the push stream.
	Send(event any) error
}

// SessionDirectory resolves a session ID to its push channel. Implemented by
// the session registry; consumers hold the sender only for the duration of a
// single operation.
type SessionDirectory interface {
	// Sender returns the push channel for a session, or a
	// SessionNotFoundError.
	Sender(id string) (PushSender, error)
}
