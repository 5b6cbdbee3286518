package openai

import "encoding/json"

// openaiRequest is the chat completions request the bridge sends upstream.
type openaiRequest struct {
	Model    string          `json:"model"`
	Messages json.RawMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

// openaiStreamChunk represents one "data:" payload of a streamed chat completion.
// Fields are kept raw so that a value of the wrong type is detected instead of
// silently zeroed.
type openaiStreamChunk struct {
	Choices []openaiStreamChoice `json:"choices"`
}

type openaiStreamChoice struct {
	Index int `json:"index"`
	Delta struct {
		Role    string          `json:"role,omitempty"`
		Content json.RawMessage `json:"content"`
	} `json:"delta"`
	FinishReason json.RawMessage `json:"finish_reason"`
}
