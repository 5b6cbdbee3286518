// Package configcmder provides the config command for managing persistent
// bridge configuration stored in the .bridge/ directory.
package configcmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/bridge/pkg/config"
)

const configLongDesc string = `Manage persistent bridge configuration.

Configuration is stored as config.toml in the .bridge/ directory and provides
default values for command flags. CLI flags and BRIDGE_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.sqlite_path, storage.postgres_dsn,
  proxy.backend, proxy.upstream, proxy.upstream_path, proxy.model, proxy.listen,
  api.listen,
  client.proxy_target, client.api_target,
  eventstream.provider, eventstream.brokers, eventstream.topic,
  eventstream.redis_addr, eventstream.stream, eventstream.max_len

Use subcommands to get, set, or list configuration values:
  bridge config set <key> <value>    Set a configuration value
  bridge config get <key>            Get a configuration value
  bridge config list                 List all configuration values

Examples:
  bridge config set proxy.upstream http://localhost:11434
  bridge config set proxy.model llama3.2
  bridge config get proxy.model
  bridge config list`

const configShortDesc string = "Manage persistent bridge configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func validKeysCompletion(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
