// Package domain defines the core entities and contracts for the canvas MCP server.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContentType identifies how a content spec's payload should be interpreted.
type ContentType string

// Supported content types. TypeAuto is resolved to one of the concrete
// types before any rendering happens; it never persists past resolution.
const (
	TypeHTML     ContentType = "html"
	TypeURL      ContentType = "url"
	TypeMarkdown ContentType = "markdown"
	TypeImage    ContentType = "image"
	TypeAuto     ContentType = "auto"
)

// IsConcrete reports whether t is one of the renderable types.
func (t ContentType) IsConcrete() bool {
	switch t {
	case TypeHTML, TypeURL, TypeMarkdown, TypeImage:
		return true
	}
	return false
}

// ContentSpec is the tagged union an agent sends to describe a renderable payload.
type ContentSpec struct {
	Type    ContentType `json:"type"`
	Content string      `json:"content"`
}

// ResolvedContent is the result of resolving a ContentSpec. Exactly one of
// HTML or DirectURL is populated: DirectURL marks a network URL the host
// should load directly instead of embedding.
type ResolvedContent struct {
	Type      ContentType
	SubType   string
	HTML      string
	DirectURL string
}

// IsDirectURL reports whether the content should be loaded by URL rather
// than from an HTML document.
func (r *ResolvedContent) IsDirectURL() bool {
	return r.DirectURL != ""
}

// ClientSession describes an active client connection for health and debug
// reporting.
type ClientSession struct {
	ID           string
	UserAgent    string
	Connected    bool
	CreatedAt    time.Time
	LastActivity time.Time
}

// NewClientSession creates a new ClientSession with a unique ID.
func NewClientSession(userAgent string) *ClientSession {
	now := time.Now()
	return &ClientSession{
		ID:           uuid.New().String(),
		UserAgent:    userAgent,
		Connected:    true,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Schema describes a tool's arguments in JSON-schema form. Only the pieces
// the dispatch pipeline needs are modeled; Required is the baseline
// validation contract.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a single schema property.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Default     any      `json:"default,omitempty"`
}

// ToolDefinition is the immutable registration record for a named tool.
type ToolDefinition struct {
	Name        string
	Description string
	Schema      Schema
}

// NotificationLevel is the severity attached to a pushed notification.
type NotificationLevel string

// Notification levels, lowest to highest.
const (
	LevelDebug   NotificationLevel = "debug"
	LevelInfo    NotificationLevel = "info"
	LevelWarning NotificationLevel = "warning"
	LevelError   NotificationLevel = "error"
)

// NotificationJob describes one running notification stream. It is mutated
// only by the loop that owns it; the cancellation registry does lookups only.
type NotificationJob struct {
	ID        string
	SessionID string
	Interval  time.Duration
	Remaining int
	Template  string
	Level     NotificationLevel
}

// WindowConfig is the request handed to the host collaborator to realize
// resolved content in a window.
type WindowConfig struct {
	Title     string `json:"title,omitempty"`
	HTML      string `json:"html,omitempty"`
	URL       string `json:"url,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Resizable bool   `json:"resizable,omitempty"`
}

// WindowHandle identifies a window created by the host collaborator.
type WindowHandle struct {
	ID string `json:"id"`
}

// InjectConfig is the request for injecting a script into a host window.
type InjectConfig struct {
	WindowID string `json:"windowId,omitempty"`
	Script   string `json:"script"`
}

// RenderRecord is a cached render result: the HTML that was displayed and
// its Markdown rendering for later re-reads by the agent.
type RenderRecord struct {
	ID        string
	Title     string
	HTML      string
	Markdown  string
	CreatedAt time.Time
}
