package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/bridge/pkg/dotdir"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "BRIDGE"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the BRIDGE_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (BRIDGE_PROXY_LISTEN, BRIDGE_PROXY_MODEL, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Storage
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)

	// Proxy
	v.SetDefault("proxy.backend", d.Proxy.Backend)
	v.SetDefault("proxy.upstream", d.Proxy.Upstream)
	v.SetDefault("proxy.upstream_path", d.Proxy.UpstreamPath)
	v.SetDefault("proxy.model", d.Proxy.Model)
	v.SetDefault("proxy.listen", d.Proxy.Listen)

	// API
	v.SetDefault("api.listen", d.API.Listen)

	// Client
	v.SetDefault("client.proxy_target", d.Client.ProxyTarget)
	v.SetDefault("client.api_target", d.Client.APITarget)

	// Event stream
	v.SetDefault("eventstream.provider", d.EventStream.Provider)
	v.SetDefault("eventstream.brokers", d.EventStream.Brokers)
	v.SetDefault("eventstream.topic", d.EventStream.Topic)
	v.SetDefault("eventstream.redis_addr", d.EventStream.RedisAddr)
	v.SetDefault("eventstream.stream", d.EventStream.Stream)
	v.SetDefault("eventstream.max_len", d.EventStream.MaxLen)
}

// FromViper reads every config key out of v, so the result reflects the full
// flag > env > file > default precedence chain.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Storage: StorageConfig{
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
		},
		Proxy: ProxyConfig{
			Backend:      v.GetString("proxy.backend"),
			Upstream:     v.GetString("proxy.upstream"),
			UpstreamPath: v.GetString("proxy.upstream_path"),
			Model:        v.GetString("proxy.model"),
			Listen:       v.GetString("proxy.listen"),
		},
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
		Client: ClientConfig{
			ProxyTarget: v.GetString("client.proxy_target"),
			APITarget:   v.GetString("client.api_target"),
		},
		EventStream: EventStreamConfig{
			Provider:  v.GetString("eventstream.provider"),
			Brokers:   v.GetString("eventstream.brokers"),
			Topic:     v.GetString("eventstream.topic"),
			RedisAddr: v.GetString("eventstream.redis_addr"),
			Stream:    v.GetString("eventstream.stream"),
			MaxLen:    v.GetUint("eventstream.max_len"),
		},
	}
}
