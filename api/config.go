// Package api provides an HTTP API server for inspecting the history of
// translated sessions.
package api

// DefaultListenAddr is the API server's default address.
const DefaultListenAddr = "127.0.0.1:5006"

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., "127.0.0.1:5006")
	ListenAddr string
}
