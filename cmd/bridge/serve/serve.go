// Package servecmder provides the serve command with subcommands for running services.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/bridge/api"
	apicmder "github.com/papercomputeco/bridge/cmd/bridge/serve/api"
	proxycmder "github.com/papercomputeco/bridge/cmd/bridge/serve/proxy"
	"github.com/papercomputeco/bridge/pkg/config"
	"github.com/papercomputeco/bridge/pkg/logger"
	storageutils "github.com/papercomputeco/bridge/pkg/storage/utils"
	"github.com/papercomputeco/bridge/proxy"
)

type ServeCommander struct {
	flags     proxycmder.Flags
	apiListen string

	cfg    *config.Config
	debug  bool
	logger *zap.Logger
}

const serveLongDesc string = `Run bridge services.

Use subcommands to run individual services or all services together:
  bridge serve          Run both proxy and API server together
  bridge serve api      Run just the API server
  bridge serve proxy    Run just the proxy server`

const serveShortDesc string = "Run bridge services"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			keys := append([]string{config.FlagProxyListen, config.FlagAPIListen}, proxycmder.FlagKeys...)

			var err error
			cmder.cfg, err = proxycmder.LoadConfig(cmd, keys)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run()
		},
	}

	proxycmder.AddFlags(cmd, &cmder.flags, config.FlagProxyListen)
	config.AddStringFlag(cmd, config.Registry, config.FlagAPIListen, &cmder.apiListen)

	cmd.AddCommand(apicmder.NewAPICmd())
	cmd.AddCommand(proxycmder.NewProxyCmd())

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	ctx := context.Background()

	// Create shared storage driver
	driver, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{
		SQLitePath:  c.cfg.Storage.SQLitePath,
		PostgresDSN: c.cfg.Storage.PostgresDSN,
		Logger:      c.logger,
	})
	if err != nil {
		return err
	}
	defer driver.Close()

	publisher, err := proxycmder.NewPublisher(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	// Create proxy
	p, err := proxy.New(proxycmder.ProxyConfig(c.cfg, publisher), driver, c.logger)
	if err != nil {
		return fmt.Errorf("creating proxy: %w", err)
	}
	defer p.Close()

	c.logger.Info("starting proxy",
		zap.String("proxy_addr", c.cfg.Proxy.Listen),
		zap.String("upstream", c.cfg.Proxy.Upstream+c.cfg.Proxy.UpstreamPath),
		zap.String("model", c.cfg.Proxy.Model),
	)

	// Create API server
	apiServer := api.NewServer(api.Config{ListenAddr: c.cfg.API.Listen}, driver, c.logger)
	defer func() { _ = apiServer.Shutdown() }()

	c.logger.Info("starting api server",
		zap.String("api_addr", c.cfg.API.Listen),
	)

	// Channel to capture errors from goroutines
	errChan := make(chan error, 2)

	go func() {
		if err := p.Run(); err != nil {
			errChan <- fmt.Errorf("proxy error: %w", err)
		}
	}()

	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return nil
	}
}
