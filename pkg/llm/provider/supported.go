package provider

import (
	"fmt"

	"github.com/papercomputeco/bridge/pkg/llm/provider/ollama"
	"github.com/papercomputeco/bridge/pkg/llm/provider/openai"
)

// Supported backend type constants
const (
	OpenAI = "openai"
	Ollama = "ollama"
)

// SupportedBackends returns the list of all supported backend type names.
func SupportedBackends() []string {
	return []string{OpenAI, Ollama}
}

// NewBackend creates a new Backend instance for the given provider type.
// Returns an error if the provider type is not recognized.
func NewBackend(providerType string) (Backend, error) {
	switch providerType {
	case OpenAI, "":
		return openai.New(), nil
	case Ollama:
		return ollama.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend type: %q (supported: %v)", providerType, SupportedBackends())
	}
}
