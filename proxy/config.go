package proxy

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/papercomputeco/bridge/pkg/eventstream"
)

const (
	// DefaultListenAddr is where the original bridge listened.
	DefaultListenAddr = "127.0.0.1:5005"

	// DefaultUpstreamURL is a local OpenAI-compatible server (LM Studio).
	DefaultUpstreamURL = "http://localhost:1234"

	// DefaultUpstreamPath is the chat completions endpoint on the upstream.
	DefaultUpstreamPath = "/v1/chat/completions"

	// DefaultUpstreamModel is sent as "model" on every upstream request.
	DefaultUpstreamModel = "local-model"
)

// Config is the proxy server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., "127.0.0.1:5005")
	ListenAddr string

	// UpstreamURL is the OpenAI-compatible server base URL (e.g., "http://localhost:1234")
	UpstreamURL string

	// UpstreamPath is appended to UpstreamURL for every translated request.
	UpstreamPath string

	// UpstreamModel replaces the client's model on the upstream request.
	UpstreamModel string

	// BackendType selects the upstream streaming dialect (currently "openai").
	BackendType string

	// Registry receives the proxy's Prometheus collectors and backs /metrics.
	// A private registry is created when nil.
	Registry *prometheus.Registry

	// Publisher is an optional event stream publisher for finished sessions.
	Publisher eventstream.Publisher
}

func (c *Config) applyDefaults() {
	if c.UpstreamURL == "" {
		c.UpstreamURL = DefaultUpstreamURL
	}
	if c.UpstreamPath == "" {
		c.UpstreamPath = DefaultUpstreamPath
	}
	if c.UpstreamModel == "" {
		c.UpstreamModel = DefaultUpstreamModel
	}
	if c.Registry == nil {
		c.Registry = prometheus.NewRegistry()
	}
}
