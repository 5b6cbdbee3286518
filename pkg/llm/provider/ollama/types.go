// Package ollama implements the Backend for Ollama's native /api/chat
// endpoint, which streams newline-delimited JSON objects instead of SSE.
package ollama

import "encoding/json"

// ollamaRequest is the /api/chat request the bridge sends upstream.
type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages json.RawMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

// ollamaStreamChunk is one line of a streamed /api/chat response.
type ollamaStreamChunk struct {
	Model   string `json:"model"`
	Message *struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"message"`
	Done       bool   `json:"done"`
	DoneReason string `json:"done_reason,omitempty"`
	Error      string `json:"error,omitempty"`

	EvalCount int `json:"eval_count,omitempty"`
}
