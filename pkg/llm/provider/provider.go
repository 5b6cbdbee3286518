package provider

import (
	"encoding/json"

	"github.com/papercomputeco/bridge/pkg/llm"
)

// Backend defines the interface for the upstream streaming dialect the bridge
// forwards requests to.
type Backend interface {
	// Name returns the canonical provider name (e.g., "openai").
	Name() string

	// BuildRequest encodes a streaming request for the given model carrying the
	// client's messages verbatim.
	BuildRequest(model string, messages json.RawMessage) ([]byte, error)

	// ParseLine classifies one complete stream line. The returned slice is
	// never empty; a line that carries nothing useful yields a single Ignored
	// or Malformed event.
	ParseLine(line string) []llm.StreamEvent
}

// Frontend defines the interface for the client-facing request dialect.
type Frontend interface {
	// Name returns the canonical provider name (e.g., "anthropic").
	Name() string

	// ParseRequest validates and converts a client request into the internal format.
	// Returns an error if the payload cannot be parsed.
	ParseRequest(payload []byte) (*llm.ChatRequest, error)
}
