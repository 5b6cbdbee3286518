// Package openai
package openai

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/papercomputeco/bridge/pkg/llm"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

var nullLiteral = []byte("null")

// provider implements the Backend interface for OpenAI-compatible chat
// completion streams (OpenAI, LM Studio, vLLM, llama.cpp server, ...).
type provider struct{}

func New() *provider { return &provider{} }

func (o *provider) Name() string {
	return "openai"
}

// BuildRequest encodes the upstream streaming request. Only the model, the
// messages (forwarded verbatim) and the stream flag are sent.
func (o *provider) BuildRequest(model string, messages json.RawMessage) ([]byte, error) {
	if len(messages) == 0 {
		messages = json.RawMessage("[]")
	}

	return json.Marshal(openaiRequest{
		Model:    model,
		Messages: messages,
		Stream:   true,
	})
}

// ParseLine classifies one complete, trimmed stream line.
//
// A single payload may carry both a text fragment and a finish reason, in which
// case the TextDelta is returned before the StreamTerminated event. The result
// is never empty.
func (o *provider) ParseLine(line string) []llm.StreamEvent {
	payload, ok := strings.CutPrefix(line, dataPrefix)
	if !ok {
		return []llm.StreamEvent{{Kind: llm.Ignored}}
	}

	payload = strings.TrimSpace(payload)
	if payload == doneSentinel {
		return []llm.StreamEvent{{Kind: llm.SentinelDone}}
	}

	var chunk openaiStreamChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil || len(chunk.Choices) == 0 {
		return []llm.StreamEvent{{Kind: llm.Malformed}}
	}

	choice := chunk.Choices[0]
	events := make([]llm.StreamEvent, 0, 2)

	if text, ok := rawString(choice.Delta.Content); ok {
		events = append(events, llm.StreamEvent{Kind: llm.TextDelta, Text: text})
	}

	if reason, ok := rawString(choice.FinishReason); ok && reason != "" && reason != "null" {
		events = append(events, llm.StreamEvent{Kind: llm.StreamTerminated, Reason: reason})
	}

	if len(events) == 0 {
		return []llm.StreamEvent{{Kind: llm.Malformed}}
	}

	return events
}

// rawString decodes raw as a JSON string. Absent, null and non-string values
// report false.
func rawString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || bytes.Equal(raw, nullLiteral) {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
