// Package initcmder provides the init command for initializing a local .bridge
// directory in the current working directory.
package initcmder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/bridge/pkg/config"
)

const (
	dirName = ".bridge"

	remoteTimeout = 10 * time.Second
)

const initLongDesc string = `Initialize a new .bridge/ directory in the current working directory.

Creates a local .bridge/ directory holding a config.toml. A local .bridge/
takes precedence over ~/.bridge/ for configuration and storage.

Use --preset to point the proxy at a known local server (lmstudio, ollama,
llamacpp) or to fetch a config.toml from an http(s) URL.

Examples:
  bridge init
  bridge init --preset ollama
  bridge init --preset https://example.com/bridge/config.toml`

const initShortDesc string = "Initialize a local .bridge/ directory"

type initCommander struct {
	preset string
}

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "",
		fmt.Sprintf("Preset name (%s) or URL of a config.toml", strings.Join(config.ValidPresetNames(), ", ")))

	return cmd
}

func (c *initCommander) run(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)
	configPath := filepath.Join(dir, "config.toml")

	info, err := os.Stat(dir)
	exists := err == nil && info.IsDir()

	cfg, err := c.resolveConfig(cmd.Context())
	if err != nil {
		return err
	}

	// Re-running init without a preset leaves an existing directory alone.
	if exists && cfg == nil {
		fmt.Fprintf(out, "Already initialized: %s\n", dir)
		return nil
	}
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating .bridge directory: %w", err)
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "Initialized .bridge directory: %s\n", dir)
	fmt.Fprintf(out, "Wrote config: %s\n", configPath)
	return nil
}

// resolveConfig returns nil when no preset was requested.
func (c *initCommander) resolveConfig(ctx context.Context) (*config.Config, error) {
	switch {
	case c.preset == "":
		return nil, nil
	case strings.HasPrefix(c.preset, "http://"), strings.HasPrefix(c.preset, "https://"):
		return fetchRemoteConfig(ctx, c.preset)
	default:
		return config.PresetConfig(c.preset)
	}
}

func fetchRemoteConfig(ctx context.Context, url string) (*config.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading remote config: %w", err)
	}

	return config.ParseConfigTOML(data)
}
