package shared

import "encoding/json"

// ServerInfo contains information about the server
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Capabilities represents the server's capabilities
type Capabilities struct {
	Tools   *ToolsCapability   `json:"tools,omitempty"`
	Logging *LoggingCapability `json:"logging,omitempty"`
}

// ToolsCapability indicates support for tools
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// LoggingCapability indicates support for leveled log notifications
type LoggingCapability struct{}

// Tool represents a tool exposed by the server
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	InputSchema any    `json:"inputSchema"`
}

// Content type discriminators
const (
	ContentTypeText  = "text"
	ContentTypeImage = "image"
)

// Content represents content returned by tools
type Content interface {
	GetType() string
}

// TextContent represents text content
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// GetType returns the content type
func (t TextContent) GetType() string {
	return t.Type
}

// ImageContent represents image content
type ImageContent struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// GetType returns the content type
func (i ImageContent) GetType() string {
	return i.Type
}

func marshalMap(m map[string]any) ([]byte, error) {
	return json.Marshal(m)
}
