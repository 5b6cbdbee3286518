package anthropic

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// requestSchema is the JSON schema a Messages request must satisfy before it
// is forwarded. Only the fields the bridge reads are constrained.
const requestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["messages"],
	"properties": {
		"model":      {"type": "string"},
		"messages":   {"type": "array"},
		"stream":     {"type": "boolean"},
		"max_tokens": {"type": "integer", "minimum": 1}
	}
}`

// ValidationError lists every schema violation found in a request.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + strings.Join(e.Errors, "; ")
}

// Validator checks inbound request payloads against the request schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the request schema.
func NewValidator() (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(requestSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile request schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate returns a *ValidationError when payload violates the schema, or
// a plain error when payload is not JSON at all.
func (v *Validator) Validate(payload []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	if result.Valid() {
		return nil
	}

	verr := &ValidationError{}
	for _, e := range result.Errors() {
		verr.Errors = append(verr.Errors, e.String())
	}
	return verr
}
