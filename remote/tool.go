package remote

import "encoding/json"

// Tool describes one callable tool, local or remote. Schemas are carried
// opaquely; the gate never interprets them.
type Tool struct {
	// Name is the tool name, namespaced for remote tools.
	Name string `json:"name"`

	// Description explains the tool to the caller.
	Description string `json:"description,omitempty"`

	// InputSchema is the tool's argument schema.
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`

	// OutputSchema is the tool's result schema, when declared.
	OutputSchema json.RawMessage `json:"outputSchema,omitempty"`

	// Annotations carries upstream metadata verbatim.
	Annotations json.RawMessage `json:"annotations,omitempty"`
}

// TextContent is one plain-text segment of a call result.
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewTextContent creates a text segment.
func NewTextContent(text string) TextContent {
	return TextContent{Type: "text", Text: text}
}

// CallResult is the local result shape for one tool call.
type CallResult struct {
	// Content holds the result segments in order.
	Content []TextContent `json:"content"`

	// IsError marks a tool-level failure reported by the server, as
	// opposed to a transport failure.
	IsError bool `json:"isError,omitempty"`
}
