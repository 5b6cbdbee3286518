// Package apicmder provides the API bridge server cobra command.
package apicmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/bridge/api"
	proxycmder "github.com/papercomputeco/bridge/cmd/bridge/serve/proxy"
	"github.com/papercomputeco/bridge/pkg/config"
	"github.com/papercomputeco/bridge/pkg/logger"
	storageutils "github.com/papercomputeco/bridge/pkg/storage/utils"
)

type apiCommander struct {
	listen      string
	sqlitePath  string
	postgresDSN string

	cfg    *config.Config
	debug  bool
	logger *zap.Logger
}

const apiLongDesc string = `Run the bridge API server for inspecting finished translation sessions.

Sessions are read from the same store the proxy writes to, so point both at
the same SQLite file or PostgreSQL database.`

const apiShortDesc string = "Run the bridge API server"

var apiFlagKeys = []string{
	config.FlagAPIListenStandalone,
	config.FlagSQLite,
	config.FlagPostgres,
}

func NewAPICmd() *cobra.Command {
	cmder := &apiCommander{}

	cmd := &cobra.Command{
		Use:   "api",
		Short: apiShortDesc,
		Long:  apiLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.cfg, err = proxycmder.LoadConfig(cmd, apiFlagKeys)
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

	config.AddStringFlag(cmd, config.Registry, config.FlagAPIListenStandalone, &cmder.listen)
	config.AddStringFlag(cmd, config.Registry, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Registry, config.FlagPostgres, &cmder.postgresDSN)

	return cmd
}

func (c *apiCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	driver, err := storageutils.NewDriver(context.Background(), &storageutils.NewDriverOpts{
		SQLitePath:  c.cfg.Storage.SQLitePath,
		PostgresDSN: c.cfg.Storage.PostgresDSN,
		Logger:      c.logger,
	})
	if err != nil {
		return err
	}
	defer driver.Close()

	server := api.NewServer(api.Config{ListenAddr: c.cfg.API.Listen}, driver, c.logger)

	c.logger.Info("starting API server",
		zap.String("listen", c.cfg.API.Listen),
	)

	return server.Run()
}
