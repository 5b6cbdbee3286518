package config

const (
	defaultBackend      = "openai"
	defaultUpstream     = "http://localhost:1234"
	defaultUpstreamPath = "/v1/chat/completions"
	defaultModel        = "local-model"
	defaultProxyListen  = "127.0.0.1:5005"
	defaultAPIListen    = "127.0.0.1:5006"

	defaultClientProxyTarget = "http://127.0.0.1:5005"
	defaultClientAPITarget   = "http://127.0.0.1:5006"

	defaultEventStreamProvider = EventStreamNone
	defaultEventStreamTopic    = "bridge.sessions"
	defaultEventStreamStream   = "bridge:sessions"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Proxy: ProxyConfig{
			Backend:      defaultBackend,
			Upstream:     defaultUpstream,
			UpstreamPath: defaultUpstreamPath,
			Model:        defaultModel,
			Listen:       defaultProxyListen,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			ProxyTarget: defaultClientProxyTarget,
			APITarget:   defaultClientAPITarget,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
			Topic:    defaultEventStreamTopic,
			Stream:   defaultEventStreamStream,
		},
	}
}
