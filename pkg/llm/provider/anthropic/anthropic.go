// Package anthropic
package anthropic

import (
	"encoding/json"
	"fmt"

	"github.com/papercomputeco/bridge/pkg/llm"
)

// provider implements the Frontend interface for the Anthropic Messages API.
type provider struct {
	validator *Validator
}

// New returns a Messages API frontend that validates every request against
// the request schema.
func New() (*provider, error) {
	v, err := NewValidator()
	if err != nil {
		return nil, err
	}
	return &provider{validator: v}, nil
}

// Name
func (p *provider) Name() string {
	return "anthropic"
}

func (p *provider) ParseRequest(payload []byte) (*llm.ChatRequest, error) {
	if err := p.validator.Validate(payload); err != nil {
		return nil, err
	}

	var req anthropicRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	return &llm.ChatRequest{
		Model:      req.Model,
		Messages:   req.Messages,
		Stream:     req.Stream,
		MaxTokens:  req.MaxTokens,
		RawRequest: payload,
	}, nil
}
