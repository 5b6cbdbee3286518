package anthropic

import "encoding/json"

// Event names of the Messages streaming protocol.
const (
	EventMessageStart      = "message_start"
	EventContentBlockStart = "content_block_start"
	EventContentBlockDelta = "content_block_delta"
	EventContentBlockStop  = "content_block_stop"
	EventMessageDelta      = "message_delta"
	EventMessageStop       = "message_stop"
	EventError             = "error"
)

// Error types carried in error payloads.
const (
	ErrorTypeAPI            = "api_error"
	ErrorTypeInvalidRequest = "invalid_request_error"
)

// StopReasonEndTurn is reported when the backend gave no specific reason.
const StopReasonEndTurn = "end_turn"

// anthropicRequest represents the fields of a Messages request the bridge reads.
type anthropicRequest struct {
	Model     string          `json:"model"`
	Messages  json.RawMessage `json:"messages"`
	MaxTokens *int            `json:"max_tokens,omitempty"`
	Stream    *bool           `json:"stream,omitempty"`
}

// anthropicMessage represents the message object announced by message_start.
type anthropicMessage struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Role         string         `json:"role"`
	Model        string         `json:"model"`
	Content      []any          `json:"content"`
	StopReason   *string        `json:"stop_reason"`
	StopSequence *string        `json:"stop_sequence"`
	Usage        anthropicUsage `json:"usage"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicOutputUsage struct {
	OutputTokens int `json:"output_tokens"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicTextDelta struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicStopDelta struct {
	StopReason   string  `json:"stop_reason"`
	StopSequence *string `json:"stop_sequence"`
}

type messageStartPayload struct {
	Type    string           `json:"type"`
	Message anthropicMessage `json:"message"`
}

type contentBlockStartPayload struct {
	Type         string                `json:"type"`
	Index        int                   `json:"index"`
	ContentBlock anthropicContentBlock `json:"content_block"`
}

type contentBlockDeltaPayload struct {
	Type  string             `json:"type"`
	Index int                `json:"index"`
	Delta anthropicTextDelta `json:"delta"`
}

type contentBlockStopPayload struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

type messageDeltaPayload struct {
	Type  string               `json:"type"`
	Delta anthropicStopDelta   `json:"delta"`
	Usage anthropicOutputUsage `json:"usage"`
}

type messageStopPayload struct {
	Type string `json:"type"`
}

// ErrorDetail is the inner object of an error payload.
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ErrorResponse is the error payload shape used both as a streamed error event
// and as the body of a non-streamed error response.
type ErrorResponse struct {
	Type  string      `json:"type"`
	Error ErrorDetail `json:"error"`
}

// NewErrorResponse returns an error payload of the given error type.
func NewErrorResponse(errType, message string) ErrorResponse {
	return ErrorResponse{
		Type:  EventError,
		Error: ErrorDetail{Type: errType, Message: message},
	}
}
