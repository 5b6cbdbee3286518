package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent bridge configuration stored as config.toml
// in the .bridge/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Storage     StorageConfig     `toml:"storage"`
	Proxy       ProxyConfig       `toml:"proxy"`
	API         APIConfig         `toml:"api"`
	Client      ClientConfig      `toml:"client"`
	EventStream EventStreamConfig `toml:"eventstream"`
}

// StorageConfig holds shared storage settings used by both proxy and API.
// When both are empty sessions are kept in memory.
type StorageConfig struct {
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// ProxyConfig holds proxy-specific settings.
type ProxyConfig struct {
	Backend      string `toml:"backend,omitempty"`
	Upstream     string `toml:"upstream,omitempty"`
	UpstreamPath string `toml:"upstream_path,omitempty"`
	Model        string `toml:"model,omitempty"`
	Listen       string `toml:"listen,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to the running
// proxy and API servers (e.g. bridge stats). Values are full URLs
// (scheme + host + port).
type ClientConfig struct {
	ProxyTarget string `toml:"proxy_target,omitempty"`
	APITarget   string `toml:"api_target,omitempty"`
}

// EventStreamConfig selects where finished sessions are announced.
type EventStreamConfig struct {
	// Provider is one of "none", "kafka" or "redis".
	Provider string `toml:"provider,omitempty"`

	// Brokers is a comma-separated list of Kafka bootstrap brokers.
	Brokers string `toml:"brokers,omitempty"`
	Topic   string `toml:"topic,omitempty"`

	RedisAddr string `toml:"redis_addr,omitempty"`
	Stream    string `toml:"stream,omitempty"`
	MaxLen    uint   `toml:"max_len,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.sqlite_path":  stringKey(func(c *Config) *string { return &c.Storage.SQLitePath }),
	"storage.postgres_dsn": stringKey(func(c *Config) *string { return &c.Storage.PostgresDSN }),

	"proxy.backend":       stringKey(func(c *Config) *string { return &c.Proxy.Backend }),
	"proxy.upstream":      stringKey(func(c *Config) *string { return &c.Proxy.Upstream }),
	"proxy.upstream_path": stringKey(func(c *Config) *string { return &c.Proxy.UpstreamPath }),
	"proxy.model":         stringKey(func(c *Config) *string { return &c.Proxy.Model }),
	"proxy.listen":        stringKey(func(c *Config) *string { return &c.Proxy.Listen }),

	"api.listen": stringKey(func(c *Config) *string { return &c.API.Listen }),

	"client.proxy_target": stringKey(func(c *Config) *string { return &c.Client.ProxyTarget }),
	"client.api_target":   stringKey(func(c *Config) *string { return &c.Client.APITarget }),

	"eventstream.provider": {
		get: func(c *Config) string { return c.EventStream.Provider },
		set: func(c *Config, v string) error {
			if !IsValidEventStreamProvider(v) {
				return fmt.Errorf("invalid value for eventstream.provider: %q (supported: %v)", v, EventStreamProviders())
			}
			c.EventStream.Provider = v
			return nil
		},
	},
	"eventstream.brokers":    stringKey(func(c *Config) *string { return &c.EventStream.Brokers }),
	"eventstream.topic":      stringKey(func(c *Config) *string { return &c.EventStream.Topic }),
	"eventstream.redis_addr": stringKey(func(c *Config) *string { return &c.EventStream.RedisAddr }),
	"eventstream.stream":     stringKey(func(c *Config) *string { return &c.EventStream.Stream }),
	"eventstream.max_len": {
		get: func(c *Config) string {
			if c.EventStream.MaxLen == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.EventStream.MaxLen), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for eventstream.max_len: %w", err)
			}
			c.EventStream.MaxLen = uint(n)
			return nil
		},
	},
}

// Event stream provider names.
const (
	EventStreamNone  = "none"
	EventStreamKafka = "kafka"
	EventStreamRedis = "redis"
)

// EventStreamProviders returns the supported eventstream.provider values.
func EventStreamProviders() []string {
	return []string{EventStreamNone, EventStreamKafka, EventStreamRedis}
}

// IsValidEventStreamProvider reports whether name is a supported provider.
func IsValidEventStreamProvider(name string) bool {
	for _, p := range EventStreamProviders() {
		if p == name {
			return true
		}
	}
	return false
}
