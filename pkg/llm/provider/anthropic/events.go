package anthropic

import (
	"encoding/json"

	"github.com/papercomputeco/bridge/pkg/sse"
)

// MessageStart announces a new assistant message with zeroed usage.
func MessageStart(id, model string) sse.Event {
	return newEvent(EventMessageStart, messageStartPayload{
		Type: EventMessageStart,
		Message: anthropicMessage{
			ID:      id,
			Type:    "message",
			Role:    "assistant",
			Model:   model,
			Content: []any{},
		},
	})
}

// ContentBlockStart opens the text content block at index.
func ContentBlockStart(index int) sse.Event {
	return newEvent(EventContentBlockStart, contentBlockStartPayload{
		Type:         EventContentBlockStart,
		Index:        index,
		ContentBlock: anthropicContentBlock{Type: "text"},
	})
}

// ContentBlockDelta carries one text fragment for the block at index.
func ContentBlockDelta(index int, text string) sse.Event {
	return newEvent(EventContentBlockDelta, contentBlockDeltaPayload{
		Type:  EventContentBlockDelta,
		Index: index,
		Delta: anthropicTextDelta{Type: "text_delta", Text: text},
	})
}

// ContentBlockStop closes the content block at index.
func ContentBlockStop(index int) sse.Event {
	return newEvent(EventContentBlockStop, contentBlockStopPayload{
		Type:  EventContentBlockStop,
		Index: index,
	})
}

// MessageDelta reports the stop reason and the final output token count.
// An empty stopReason is reported as end_turn.
func MessageDelta(stopReason string, outputTokens int) sse.Event {
	if stopReason == "" {
		stopReason = StopReasonEndTurn
	}

	return newEvent(EventMessageDelta, messageDeltaPayload{
		Type:  EventMessageDelta,
		Delta: anthropicStopDelta{StopReason: stopReason},
		Usage: anthropicOutputUsage{OutputTokens: outputTokens},
	})
}

// MessageStop ends the message.
func MessageStop() sse.Event {
	return newEvent(EventMessageStop, messageStopPayload{Type: EventMessageStop})
}

// Error reports a mid-stream api_error.
func Error(message string) sse.Event {
	return newEvent(EventError, NewErrorResponse(ErrorTypeAPI, message))
}

// newEvent encodes payload as the data of an event named name. The payload
// types in this package contain only strings, ints and nil pointers, so
// encoding cannot fail.
func newEvent(name string, payload any) sse.Event {
	data, _ := json.Marshal(payload)
	return sse.Event{Type: name, Data: string(data)}
}
