// Package statscmder provides the stats command, which prints the live
// counters of a running bridge proxy.
package statscmder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/bridge/pkg/cliui"
	"github.com/papercomputeco/bridge/pkg/config"
	"github.com/papercomputeco/bridge/pkg/stats"
)

const statsLongDesc string = `Show the counters of a running bridge proxy.

Queries the proxy's /stats endpoint and prints the number of requests
handled and output tokens streamed since the proxy started.

Examples:
  bridge stats
  bridge stats --proxy-target http://127.0.0.1:5005`

const statsShortDesc string = "Show live proxy counters"

const requestTimeout = 5 * time.Second

type statsCommander struct {
	target string
	asJSON bool
}

func NewStatsCmd() *cobra.Command {
	cmder := &statsCommander{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: statsShortDesc,
		Long:  statsLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Registry, []string{config.FlagProxyTarget})
			cmder.target = v.GetString("client.proxy_target")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Registry, config.FlagProxyTarget, &cmder.target)
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print the raw JSON counters")

	return cmd
}

func (c *statsCommander) run(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	var snap stats.Snapshot
	fetch := func() error {
		var err error
		snap, err = Fetch(cmd.Context(), c.target)
		return err
	}

	if c.asJSON {
		if err := fetch(); err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	fmt.Fprintln(out)
	if err := cliui.Step(out, "Querying "+c.target, fetch); err != nil {
		return err
	}
	fmt.Fprintln(out)

	cliui.KeyValues(out, []cliui.Row{
		{Key: "Requests handled", Value: strconv.FormatUint(snap.TotalRequestsHandled, 10)},
		{Key: "Tokens processed", Value: strconv.FormatUint(snap.TotalTokensProcessed, 10)},
	})
	fmt.Fprintln(out)

	return nil
}

// Fetch reads the counters from the proxy at target.
func Fetch(ctx context.Context, target string) (stats.Snapshot, error) {
	var snap stats.Snapshot

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	url := strings.TrimSuffix(target, "/") + "/stats"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return snap, fmt.Errorf("building stats request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return snap, fmt.Errorf("querying proxy at %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return snap, fmt.Errorf("querying proxy at %s: HTTP %d", target, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return snap, fmt.Errorf("decoding stats: %w", err)
	}

	return snap, nil
}
