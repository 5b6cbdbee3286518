package ollama

import (
	"encoding/json"

	"github.com/papercomputeco/bridge/pkg/llm"
)

// defaultDoneReason is reported when the final chunk omits done_reason, which
// older Ollama releases do.
const defaultDoneReason = "stop"

// provider implements the Backend interface for Ollama's native chat API.
type provider struct{}

func New() *provider { return &provider{} }

func (o *provider) Name() string {
	return "ollama"
}

func (o *provider) BuildRequest(model string, messages json.RawMessage) ([]byte, error) {
	if len(messages) == 0 {
		messages = json.RawMessage("[]")
	}

	return json.Marshal(ollamaRequest{
		Model:    model,
		Messages: messages,
		Stream:   true,
	})
}

// ParseLine classifies one NDJSON line. Intermediate chunks yield a TextDelta
// (empty content included); the final "done" chunk yields its trailing text,
// if any, followed by StreamTerminated. Ollama has no [DONE] sentinel.
func (o *provider) ParseLine(line string) []llm.StreamEvent {
	if line == "" {
		return []llm.StreamEvent{{Kind: llm.Ignored}}
	}

	var chunk ollamaStreamChunk
	if err := json.Unmarshal([]byte(line), &chunk); err != nil || chunk.Error != "" {
		return []llm.StreamEvent{{Kind: llm.Malformed}}
	}

	var (
		text    string
		hasText bool
	)
	if chunk.Message != nil {
		if err := json.Unmarshal(chunk.Message.Content, &text); err == nil {
			hasText = true
		}
	}

	if !chunk.Done {
		if !hasText {
			return []llm.StreamEvent{{Kind: llm.Malformed}}
		}
		return []llm.StreamEvent{{Kind: llm.TextDelta, Text: text}}
	}

	events := make([]llm.StreamEvent, 0, 2)
	if hasText && text != "" {
		events = append(events, llm.StreamEvent{Kind: llm.TextDelta, Text: text})
	}

	reason := chunk.DoneReason
	if reason == "" {
		reason = defaultDoneReason
	}
	return append(events, llm.StreamEvent{Kind: llm.StreamTerminated, Reason: reason})
}
