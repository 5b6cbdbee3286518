// Package bridgecmder
package bridgecmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/bridge/cmd/bridge/config"
	initcmder "github.com/papercomputeco/bridge/cmd/bridge/init"
	servecmder "github.com/papercomputeco/bridge/cmd/bridge/serve"
	statscmder "github.com/papercomputeco/bridge/cmd/bridge/stats"
	versioncmder "github.com/papercomputeco/bridge/cmd/version"
)

const bridgeLongDesc string = `Bridge lets Anthropic Messages API clients talk to local
OpenAI-compatible model servers (LM Studio, Ollama, llama.cpp).

Streaming /v1/messages requests are translated into chat completions
requests and the upstream token stream is translated back as it arrives.

Run services using:
  bridge serve api      Run the session API server
  bridge serve proxy    Run the proxy server
  bridge serve          Run both servers together`

const bridgeShortDesc string = "Bridge - Anthropic to OpenAI streaming proxy"

func NewBridgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "bridge",
		Short:        bridgeShortDesc,
		Long:         bridgeLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .bridge/ config directory")

	// Add subcommands
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(statscmder.NewStatsCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
