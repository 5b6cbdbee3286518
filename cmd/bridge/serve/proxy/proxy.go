// Package proxycmder provides the proxy server command.
package proxycmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/bridge/pkg/config"
	"github.com/papercomputeco/bridge/pkg/eventstream"
	eventstreamutils "github.com/papercomputeco/bridge/pkg/eventstream/utils"
	"github.com/papercomputeco/bridge/pkg/logger"
	storageutils "github.com/papercomputeco/bridge/pkg/storage/utils"
	"github.com/papercomputeco/bridge/proxy"
)

type proxyCommander struct {
	flags  Flags
	cfg    *config.Config
	debug  bool
	logger *zap.Logger
}

// Flags are the flag targets shared by every command that starts the proxy.
type Flags struct {
	Listen       string
	Upstream     string
	UpstreamPath string
	Model        string
	Backend      string
	SQLitePath   string
	PostgresDSN  string
	EventStream  string
	KafkaBrokers string
	KafkaTopic   string
	RedisAddr    string
	RedisStream  string
	RedisMaxLen  uint
}

// FlagKeys lists the registry keys AddFlags registers, minus the listen flag.
var FlagKeys = []string{
	config.FlagUpstream,
	config.FlagUpstreamPath,
	config.FlagModel,
	config.FlagBackend,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagEventStream,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
	config.FlagRedisAddr,
	config.FlagRedisStream,
	config.FlagRedisMaxLen,
}

// AddFlags registers the proxy flags on cmd. listenKey selects which listen
// flag variant is used.
func AddFlags(cmd *cobra.Command, f *Flags, listenKey string) {
	config.AddStringFlag(cmd, config.Registry, listenKey, &f.Listen)
	config.AddStringFlag(cmd, config.Registry, config.FlagUpstream, &f.Upstream)
	config.AddStringFlag(cmd, config.Registry, config.FlagUpstreamPath, &f.UpstreamPath)
	config.AddStringFlag(cmd, config.Registry, config.FlagModel, &f.Model)
	config.AddStringFlag(cmd, config.Registry, config.FlagBackend, &f.Backend)
	config.AddStringFlag(cmd, config.Registry, config.FlagSQLite, &f.SQLitePath)
	config.AddStringFlag(cmd, config.Registry, config.FlagPostgres, &f.PostgresDSN)
	config.AddStringFlag(cmd, config.Registry, config.FlagEventStream, &f.EventStream)
	config.AddStringFlag(cmd, config.Registry, config.FlagKafkaBrokers, &f.KafkaBrokers)
	config.AddStringFlag(cmd, config.Registry, config.FlagKafkaTopic, &f.KafkaTopic)
	config.AddStringFlag(cmd, config.Registry, config.FlagRedisAddr, &f.RedisAddr)
	config.AddStringFlag(cmd, config.Registry, config.FlagRedisStream, &f.RedisStream)
	config.AddUintFlag(cmd, config.Registry, config.FlagRedisMaxLen, &f.RedisMaxLen)
}

// LoadConfig resolves the effective configuration for cmd: flags, then
// BRIDGE_* environment variables, then config.toml, then defaults.
func LoadConfig(cmd *cobra.Command, keys []string) (*config.Config, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	config.BindRegisteredFlags(v, cmd, config.Registry, keys)

	cfg := config.FromViper(v)
	if !config.IsValidEventStreamProvider(cfg.EventStream.Provider) {
		return nil, fmt.Errorf("unsupported event stream provider: %s", cfg.EventStream.Provider)
	}

	return cfg, nil
}

const proxyLongDesc string = `Run the proxy server.

The proxy accepts Anthropic Messages API streaming requests on /v1/messages,
forwards them to an OpenAI-compatible chat completions server and translates
the reply back into Anthropic streaming events as it arrives.

Live counters are served on /stats and Prometheus metrics on /metrics.`

const proxyShortDesc string = "Run the bridge proxy server"

func NewProxyCmd() *cobra.Command {
	cmder := &proxyCommander{}

	cmd := &cobra.Command{
		Use:   "proxy",
		Short: proxyShortDesc,
		Long:  proxyLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			keys := append([]string{config.FlagProxyListenStandalone}, FlagKeys...)
			cmder.cfg, err = LoadConfig(cmd, keys)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run()
		},
	}

	AddFlags(cmd, &cmder.flags, config.FlagProxyListenStandalone)

	return cmd
}

func (c *proxyCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	ctx := context.Background()

	driver, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{
		SQLitePath:  c.cfg.Storage.SQLitePath,
		PostgresDSN: c.cfg.Storage.PostgresDSN,
		Logger:      c.logger,
	})
	if err != nil {
		return err
	}
	defer driver.Close()

	publisher, err := NewPublisher(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	p, err := proxy.New(ProxyConfig(c.cfg, publisher), driver, c.logger)
	if err != nil {
		return fmt.Errorf("creating proxy: %w", err)
	}
	defer p.Close()

	c.logger.Info("starting proxy server",
		zap.String("listen", c.cfg.Proxy.Listen),
		zap.String("upstream", c.cfg.Proxy.Upstream+c.cfg.Proxy.UpstreamPath),
		zap.String("model", c.cfg.Proxy.Model),
	)

	return p.Run()
}

// NewPublisher builds the session event publisher selected by cfg.
func NewPublisher(ctx context.Context, cfg *config.Config, log *zap.Logger) (eventstream.Publisher, error) {
	publisher, err := eventstreamutils.NewPublisher(ctx, &eventstreamutils.NewPublisherOpts{
		Provider:  cfg.EventStream.Provider,
		Brokers:   cfg.EventStream.Brokers,
		Topic:     cfg.EventStream.Topic,
		RedisAddr: cfg.EventStream.RedisAddr,
		Stream:    cfg.EventStream.Stream,
		MaxLen:    cfg.EventStream.MaxLen,
		Logger:    log,
	})
	if err != nil {
		return nil, fmt.Errorf("creating event stream publisher: %w", err)
	}
	return publisher, nil
}

// ProxyConfig maps the resolved configuration onto a proxy.Config.
func ProxyConfig(cfg *config.Config, publisher eventstream.Publisher) proxy.Config {
	return proxy.Config{
		ListenAddr:    cfg.Proxy.Listen,
		UpstreamURL:   cfg.Proxy.Upstream,
		UpstreamPath:  cfg.Proxy.UpstreamPath,
		UpstreamModel: cfg.Proxy.Model,
		BackendType:   cfg.Proxy.Backend,
		Publisher:     publisher,
	}
}
