package shared

// MCP method names
const (
	// Core methods
	MethodInitialize = "initialize"
	MethodPing       = "ping"
	MethodShutdown   = "shutdown"

	// Tool methods
	MethodListTools = "tools/list"
	MethodCallTool  = "tools/call"

	// Client-to-server notifications
	NotificationInitialized = "notifications/initialized"

	// Server-to-client notifications
	NotificationMessage = "notifications/message"
)

// InitializeParams represents parameters for the initialize method
type InitializeParams struct {
	ProtocolVersion string     `json:"protocolVersion,omitempty"`
	ClientInfo      ServerInfo `json:"clientInfo"`
}

// InitializeResult represents the result of the initialize method
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
	Capabilities    Capabilities `json:"capabilities"`
	Instructions    string       `json:"instructions,omitempty"`
}

// ListToolsResult represents the result of the tools/list method
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

// CallToolParams represents parameters for the tools/call method
type CallToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// CallToolResult represents the result of the tools/call method. Extra holds
// tool-specific top-level fields merged into the result object on the wire.
type CallToolResult struct {
	Content []Content      `json:"content"`
	IsError bool           `json:"isError,omitempty"`
	Extra   map[string]any `json:"-"`
}

// MarshalJSON flattens Extra into the result object.
func (r CallToolResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+2)
	for k, v := range r.Extra {
		out[k] = v
	}
	out["content"] = r.Content
	if r.IsError {
		out["isError"] = true
	}
	return marshalMap(out)
}

// TextResult builds a single-text-content result, the common tool return
// shape.
func TextResult(text string) *CallToolResult {
	return &CallToolResult{
		Content: []Content{TextContent{Type: ContentTypeText, Text: text}},
	}
}
