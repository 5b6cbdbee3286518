package llm

import "encoding/json"

// ChatRequest represents the parts of an inbound chat request the bridge acts on.
// Everything else the client sends is dropped before the request is forwarded.
type ChatRequest struct {
	// Model name requested by the client (e.g., "claude-3-5-sonnet").
	// Informational only: the backend model is configured on the proxy.
	Model string `json:"model"`

	// Conversation messages, kept verbatim so they can be forwarded to the
	// backend without re-encoding.
	Messages json.RawMessage `json:"messages"`

	// Whether to stream the response. A nil value means the client did not say.
	Stream *bool `json:"stream,omitempty"`

	// MaxTokens as requested by the client; not forwarded.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// RawRequest preserves the original request payload for debugging.
	RawRequest json.RawMessage `json:"raw_request,omitempty"`
}

// Streaming reports whether the request asks for a streamed response.
// An absent stream flag counts as streaming.
func (r *ChatRequest) Streaming() bool {
	return r.Stream == nil || *r.Stream
}
